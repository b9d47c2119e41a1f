package store

// Dir is a Config rooted at a fixed directory.
type Dir string

func (d Dir) BasePath() string {
	return string(d)
}
