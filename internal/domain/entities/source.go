package entities

// Source indica de dónde salió el dato servido
type Source string

const (
	SourceCache    Source = "cache"
	SourceUpstream Source = "upstream"
	SourceStale    Source = "stale"
)

// FromCache mantiene la semántica histórica de from_cache: live y stale cuentan como caché
func (s Source) FromCache() bool {
	return s == SourceCache || s == SourceStale
}

func (s Source) String() string {
	return string(s)
}
