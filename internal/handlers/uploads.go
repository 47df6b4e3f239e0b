package handlers

import (
	"net/http"
	"os"
)

// filesOnly serves regular files and hides directories, so upload folders
// cannot be listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

func uploadsHandler(dir string) http.Handler {
	return http.StripPrefix("/uploads/", http.FileServer(filesOnly{fs: http.Dir(dir)}))
}
