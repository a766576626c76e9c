package filesystem

const (
	// TemporaryNamePrefix is the file name prefix used for all temporary files
	// and directories created by dirwatch. Using a leading dot keeps them
	// hidden on POSIX systems.
	TemporaryNamePrefix = ".dirwatch-temporary-"
)
