package ports

// FileSystem is the storage used for image directories, snapshots and reports.
type FileSystem interface {
	// ReadFile returns the contents of a still image or GIF.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces path with data. Readers never observe a partial file.
	WriteFile(path string, data []byte) error

	MkdirAll(path string) error

	// ReadDir lists the regular, non-hidden files in a directory, sorted by name.
	ReadDir(path string) ([]string, error)
}
