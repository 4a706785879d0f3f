package normalize

const (
	timeTBD         = "TBD"
	categoryGeneral = "General"
)

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
