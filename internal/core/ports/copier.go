package ports

// FileCopier copies single files into the output tree.
//
//go:generate mockgen -source=copier.go -destination=mocks/mock_copier.go -package=mocks
type FileCopier interface {
	// CopyFile copies src to dst, creating dst's parent directories.
	CopyFile(src, dst string) error
}
