package telemetry

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes each exchange to <directory>/<id>.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears directory and recreates it.
func NewFilesystemOutput(directory string) (FilesystemOutput, error) {
	err := os.RemoveAll(directory)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(directory, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: directory}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
