package helper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// GenerateUUID creates a random unique UUID string
func GenerateUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %v", err)
	}
	return id.String(), nil
}

// pretty print
func PrettyPrint(v interface{}) {
	fmt.Println(PrettyJSON(v))
}

func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
	}
	return string(b)
}

// ReadFile loads path into memory, drawing a byte progress bar on progress.
// A nil progress writer disables the bar.
func ReadFile(path string, progress io.Writer) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(int(info.Size()))
	var dst io.Writer = &buf
	if progress != nil {
		bar := progressbar.NewOptions64(info.Size(),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("reading "+filepath.Base(path)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
		dst = io.MultiWriter(&buf, bar)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
