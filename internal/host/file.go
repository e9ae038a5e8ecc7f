package host

import (
	"bufio"
	"io"
	"os"
)

// ReadFile returns a file's full contents as a string.
func (s *Services) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteFile replaces a file's contents, creating it if absent.
func (s *Services) WriteFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// AppendFile appends to a file, creating it if absent.
func (s *Services) AppendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}

func (s *Services) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Services) DeleteFile(path string) error {
	return os.Remove(path)
}

func (s *Services) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (s *Services) ListDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (s *Services) ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (s *Services) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func (s *Services) MoveFile(src, dst string) error {
	return os.Rename(src, dst)
}
