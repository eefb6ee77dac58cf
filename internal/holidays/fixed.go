package holidays

// fixedSolar are the public holidays pinned to the solar calendar. Lunar
// holidays shift every year and only come from data files.
var fixedSolar = []struct {
	month, day int
	name       string
}{
	{1, 1, "Nowruz"},
	{1, 2, "Nowruz"},
	{1, 3, "Nowruz"},
	{1, 4, "Nowruz"},
	{1, 12, "Islamic Republic Day"},
	{1, 13, "Nature Day"},
	{3, 14, "Death of Khomeini"},
	{3, 15, "15 Khordad Uprising"},
	{11, 22, "Revolution Day"},
	{12, 29, "Oil Nationalization Day"},
}

// Fixed returns the solar holidays of the given Jalali years.
func Fixed(years ...int) Data {
	out := make(Data, len(years))
	for _, y := range years {
		m := make(map[string]*Entry, len(fixedSolar))
		for _, h := range fixedSolar {
			m[key(h.month, h.day)] = &Entry{Holiday: true, Name: h.name}
		}
		out[y] = m
	}
	return out
}

// Merge overlays src onto dst and returns dst. Entries in src win.
func Merge(dst, src Data) Data {
	if dst == nil {
		dst = make(Data, len(src))
	}
	for y, days := range src {
		if dst[y] == nil {
			dst[y] = make(map[string]*Entry, len(days))
		}
		for k, e := range days {
			dst[y][k] = e
		}
	}
	return dst
}
