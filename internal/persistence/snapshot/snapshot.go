// Package snapshot saves and loads level state as a zstd-compressed JSON
// header line followed by a JSON body of actor descriptors.
package snapshot

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Versifine/gravitation/internal/actor"
)

const Version = 1

var (
	ErrVersion = errors.New("unsupported snapshot version")
	ErrInvalid = errors.New("invalid snapshot")
)

//go:embed snapshot.schema.json
var schemaJSON []byte

const schemaURL = "snapshot.schema.json"

var bodySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

type Header struct {
	Version int       `json:"version"`
	Level   string    `json:"level"`
	SavedAt time.Time `json:"saved_at"`
	Score   int       `json:"score"`
	// ElapsedMS is play time at the moment of saving.
	ElapsedMS int64 `json:"elapsed_ms"`
}

func (h Header) Elapsed() time.Duration {
	return time.Duration(h.ElapsedMS) * time.Millisecond
}

type Body struct {
	Actors []actor.Descriptor `json:"actors"`
}

type Snapshot struct {
	Header Header
	Body   Body
}

// Write stores snap at path. The data goes to a temporary file in the
// same directory first, so a failed write never leaves a partial file at
// path.
func Write(path string, snap Snapshot) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if snap.Header.Version == 0 {
		snap.Header.Version = Version
	}
	if snap.Body.Actors == nil {
		snap.Body.Actors = []actor.Descriptor{}
	}
	if err := encode(f, snap); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func encode(w io.Writer, snap Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(snap.Body); err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// Read loads and validates the snapshot at path.
func Read(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &snap.Header); err != nil {
		return snap, fmt.Errorf("%w: header: %v", ErrInvalid, err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("%w: %d", ErrVersion, snap.Header.Version)
	}

	raw, err := io.ReadAll(br)
	if err != nil {
		return snap, fmt.Errorf("read body: %w", err)
	}
	if err := validate(raw); err != nil {
		return snap, err
	}
	if err := json.Unmarshal(raw, &snap.Body); err != nil {
		return snap, fmt.Errorf("%w: body: %v", ErrInvalid, err)
	}
	return snap, nil
}

func validate(raw []byte) error {
	schema, err := bodySchema()
	if err != nil {
		return fmt.Errorf("compile snapshot schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: body: %v", ErrInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
