package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Format
		wantErr  bool
	}{
		{
			name:     "gzip tarball",
			filename: "release-1.0.tar.gz",
			want:     FORMAT_GZIP,
		},
		{
			name:     "tgz alias",
			filename: "backup.tgz",
			want:     FORMAT_GZIP,
		},
		{
			name:     "bzip2 tarball",
			filename: "data.tar.bz2",
			want:     FORMAT_BZIP2,
		},
		{
			name:     "short bzip2 alias",
			filename: "data.tar.bz",
			want:     FORMAT_BZIP2,
		},
		{
			name:     "zip",
			filename: "bundle.zip",
			want:     FORMAT_ZIP,
		},
		{
			name:     "seven zip tarball",
			filename: "release.tar.7z",
			want:     FORMAT_SEVENZ,
		},
		{
			name:     "xz tarball",
			filename: "kernel.tar.xz",
			want:     FORMAT_XZ,
		},
		{
			name:     "unknown extension",
			filename: "x.unknownext",
			wantErr:  true,
		},
		{
			name:     "bare tar is not supported",
			filename: "plain.tar",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromExtension(t *testing.T) {
	for _, format := range Formats() {
		t.Run(format.String(), func(t *testing.T) {
			got, err := FromExtension(format.Extension())
			assert.NoError(t, err)
			assert.Equal(t, format, got)

			// leading dot accepted too
			got, err = FromExtension("." + format.Extension())
			assert.NoError(t, err)
			assert.Equal(t, format, got)
		})
	}

	t.Run("alias tgz", func(t *testing.T) {
		got, err := FromExtension("tgz")
		assert.NoError(t, err)
		assert.Equal(t, FORMAT_GZIP, got)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := FromExtension("rar")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestExtensionRoundTrip(t *testing.T) {
	// every format's canonical extension must resolve back to it
	for _, format := range Formats() {
		resolved, err := FromFilename("archive." + format.Extension())
		assert.NoError(t, err)
		assert.Equal(t, format, resolved)
	}
}

func TestUpdaterNotify(t *testing.T) {
	t.Run("nil updater is a no-op", func(t *testing.T) {
		var updater Updater
		assert.NotPanics(t, func() {
			updater.Notify(UpdateStatus{Brief: Str("hello")})
		})
	})

	t.Run("attached updater receives status", func(t *testing.T) {
		var received []UpdateStatus
		updater := Updater(func(status UpdateStatus) {
			received = append(received, status)
		})
		updater.Notify(UpdateStatus{Increment: Count(3)})
		assert.Len(t, received, 1)
		assert.Equal(t, uint64(3), *received[0].Increment)
		assert.Nil(t, received[0].Total)
	})
}
