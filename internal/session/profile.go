package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// lockFile — имя lock-файла в каталоге профиля.
const lockFile = ".lock"

// profileLock держит эксклюзивную блокировку каталога профиля.
// Защищает от одновременного использования профиля двумя процессами
// (два воркера или воркер и интерактивный login).
type profileLock struct {
	path string
}

// acquireProfileLock захватывает блокировку каталога профиля.
// Возвращает ErrProfileLocked, если каталог уже занят.
func acquireProfileLock(profileDir string) (*profileLock, error) {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	path := filepath.Join(profileDir, lockFile)

	// O_EXCL гарантирует атомарность: создать файл может только один процесс.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileLocked, profileDir)
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write lock file: %w", err)
	}

	return &profileLock{path: path}, nil
}

// release снимает блокировку.
func (l *profileLock) release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
