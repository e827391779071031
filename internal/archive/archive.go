// Package archive packs a build output directory into a reproducible
// .tar.zst file with a BLAKE3 checksum beside it.
package archive

import (
	"archive/tar"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/pygame-manager/pgm/internal/filesystem"
)

// Extension is appended to the archived directory's path.
const Extension = ".tar.zst"

// ChecksumExtension is appended to the archive path for the digest file.
const ChecksumExtension = ".b3"

// epoch stamps every entry so identical trees produce identical archives.
var epoch = time.Unix(0, 0).UTC()

// Write streams root as a zstd-compressed tar to w. Entry names are
// prefixed with prefix. It returns the hex BLAKE3 digest of the bytes
// written.
func Write(w io.Writer, fsys filesystem.FileSystem, root, prefix string) (string, error) {
	hasher := blake3.New()
	enc, err := zstd.NewWriter(io.MultiWriter(w, hasher), zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return "", fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	tw := tar.NewWriter(enc)

	walkErr := fsys.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := path.Join(prefix, filepath.ToSlash(rel))

		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			return tw.WriteHeader(&tar.Header{
				Typeflag: tar.TypeDir,
				Name:     name + "/",
				Mode:     0755,
				ModTime:  epoch,
				Format:   tar.FormatPAX,
			})
		}

		data, err := fsys.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		mode := int64(info.Mode().Perm())
		if mode == 0 {
			mode = 0644
		}
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     name,
			Mode:     mode,
			Size:     int64(len(data)),
			ModTime:  epoch,
			Format:   tar.FormatPAX,
		}); err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err
	})
	if walkErr != nil {
		enc.Close()
		return "", fmt.Errorf("failed to archive %s: %w", root, walkErr)
	}

	if err := tw.Close(); err != nil {
		enc.Close()
		return "", fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to finish zstd stream: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Result names the files Create produced.
type Result struct {
	Path         string
	ChecksumPath string
	Digest       string
	Size         int64
}

// Create archives dir into dir+".tar.zst" and writes the digest in b3sum
// format to the archive path plus ".b3".
func Create(fsys filesystem.FileSystem, dir string) (*Result, error) {
	dir = filepath.Clean(dir)
	dst := dir + Extension

	var buf bytes.Buffer
	digest, err := Write(&buf, fsys, dir, filepath.Base(dir))
	if err != nil {
		return nil, err
	}
	if err := fsys.WriteFile(dst, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", dst, err)
	}

	sumPath := dst + ChecksumExtension
	line := fmt.Sprintf("%s  %s\n", digest, filepath.Base(dst))
	if err := fsys.WriteFile(sumPath, []byte(line), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", sumPath, err)
	}

	return &Result{Path: dst, ChecksumPath: sumPath, Digest: digest, Size: int64(buf.Len())}, nil
}

// Verify recomputes the digest of an archive's bytes.
func Verify(data []byte, digest string) bool {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]) == digest
}
