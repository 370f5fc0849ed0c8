package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// snapshotLine is a single line of the JSON-lines snapshot file. A line
// carries either a live record or a retired short id (issued once, record
// since deleted). Retired ids must survive restarts so they are never reused.
type snapshotLine struct {
	Record  *Record `json:"record,omitempty"`
	Retired string  `json:"retired,omitempty"`
}

// FileStorage persists records to a JSON-lines snapshot on top of the
// in-memory backend. The snapshot is rewritten after every mutation.
type FileStorage struct {
	mem    *MemoryStorage
	path   string
	logger *zap.Logger
}

func NewFileStorage(path string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, errors.Wrap(err, "cannot create storage directory")
	}

	mem, err := CreateMemoryStorage()
	if err != nil {
		return nil, err
	}

	fs := &FileStorage{
		mem:    mem,
		path:   path,
		logger: logger,
	}

	if err := fs.load(); err != nil {
		return nil, err
	}

	return fs, nil
}

func (fs *FileStorage) load() error {
	file, err := os.OpenFile(fs.path, os.O_RDONLY|os.O_CREATE, 0660)
	if err != nil {
		return errors.Wrap(err, "cannot open storage file")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line snapshotLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return errors.Wrap(err, "failed to parse snapshot line")
		}

		switch {
		case line.Record != nil:
			fs.mem.mu.Lock()
			fs.mem.issued[line.Record.ShortID] = struct{}{}
			fs.mem.byID[line.Record.ID] = *line.Record
			fs.mem.byShort[line.Record.ShortID] = line.Record.ID
			fs.mem.mu.Unlock()
		case line.Retired != "":
			fs.mem.mu.Lock()
			fs.mem.issued[line.Retired] = struct{}{}
			fs.mem.mu.Unlock()
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "error reading storage file")
	}

	fs.logger.Info("file storage loaded", zap.Int("records", len(fs.mem.byID)))
	return nil
}

// persist rewrites the whole snapshot. Called with no locks held; takes the
// memory read lock itself.
func (fs *FileStorage) persist() error {
	tmp := fs.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0660)
	if err != nil {
		return errors.Wrap(err, "cannot open snapshot file")
	}

	writer := bufio.NewWriter(file)

	fs.mem.mu.RLock()
	for _, record := range fs.mem.byID {
		record := record
		if err := writeLine(writer, snapshotLine{Record: &record}); err != nil {
			fs.mem.mu.RUnlock()
			file.Close()
			return err
		}
	}
	for shortID := range fs.mem.issued {
		if _, live := fs.mem.byShort[shortID]; live {
			continue
		}
		if err := writeLine(writer, snapshotLine{Retired: shortID}); err != nil {
			fs.mem.mu.RUnlock()
			file.Close()
			return err
		}
	}
	fs.mem.mu.RUnlock()

	if err := writer.Flush(); err != nil {
		file.Close()
		return errors.Wrap(err, "cannot flush snapshot")
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "cannot close snapshot")
	}

	return errors.Wrap(os.Rename(tmp, fs.path), "cannot replace snapshot")
}

func writeLine(w *bufio.Writer, line snapshotLine) error {
	b, err := json.Marshal(line)
	if err != nil {
		return errors.Wrap(err, "cannot marshal snapshot line")
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return errors.Wrap(err, "cannot write snapshot line")
	}
	return nil
}

func (fs *FileStorage) Insert(ctx context.Context, record Record) (*Record, error) {
	created, err := fs.mem.Insert(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := fs.persist(); err != nil {
		return nil, err
	}
	return created, nil
}

func (fs *FileStorage) Update(ctx context.Context, record Record) (*Record, error) {
	updated, err := fs.mem.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := fs.persist(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (fs *FileStorage) FindByID(ctx context.Context, id string) (*Record, error) {
	return fs.mem.FindByID(ctx, id)
}

func (fs *FileStorage) FindByShortID(ctx context.Context, shortID string) (*Record, error) {
	return fs.mem.FindByShortID(ctx, shortID)
}

func (fs *FileStorage) All(ctx context.Context) ([]Record, error) {
	return fs.mem.All(ctx)
}

func (fs *FileStorage) Delete(ctx context.Context, id string) error {
	if err := fs.mem.Delete(ctx, id); err != nil {
		return err
	}
	return fs.persist()
}

func (fs *FileStorage) DeleteAll(ctx context.Context) error {
	if err := fs.mem.DeleteAll(ctx); err != nil {
		return err
	}
	return fs.persist()
}

func (fs *FileStorage) PingContext(ctx context.Context) error {
	return fs.mem.PingContext(ctx)
}
