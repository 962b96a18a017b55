package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		baseURL string
		ftpHost string
		want    string
		viaFTP  bool
		wantErr bool
	}{
		{
			name: "absolute https url",
			ref:  "https://portal.example.com/exports/acme_bs.csv",
			want: "https://portal.example.com/exports/acme_bs.csv",
		},
		{
			name:   "explicit ftp url",
			ref:    "ftp://drops.example.com/results/fy2024.zip",
			want:   "ftp://drops.example.com/results/fy2024.zip",
			viaFTP: true,
		},
		{
			name:    "bare path joins base url",
			ref:     "results/ACME/fy2024.zip",
			baseURL: "https://portal.example.com/",
			want:    "https://portal.example.com/results/ACME/fy2024.zip",
		},
		{
			name:    "leading slash collapses",
			ref:     "/results/fy2024.zip",
			baseURL: "https://portal.example.com",
			want:    "https://portal.example.com/results/fy2024.zip",
		},
		{
			name:    "bare path falls back to ftp",
			ref:     "results/fy2024.zip",
			ftpHost: "drops.example.com",
			want:    "results/fy2024.zip",
			viaFTP:  true,
		},
		{
			name:    "base url wins over ftp",
			ref:     "results/fy2024.zip",
			baseURL: "https://portal.example.com",
			ftpHost: "drops.example.com",
			want:    "https://portal.example.com/results/fy2024.zip",
		},
		{
			name:    "nothing configured",
			ref:     "results/fy2024.zip",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, viaFTP, err := resolveRef(tt.ref, tt.baseURL, tt.ftpHost)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, target)
			assert.Equal(t, tt.viaFTP, viaFTP)
		})
	}
}

func TestDestName(t *testing.T) {
	tests := []struct {
		target  string
		want    string
		wantErr bool
	}{
		{target: "https://portal.example.com/exports/acme_bs.csv", want: "acme_bs.csv"},
		{target: "https://portal.example.com/exports/acme_bs.csv?session=1", want: "acme_bs.csv"},
		{target: "ftp://drops.example.com/results/fy2024.zip", want: "fy2024.zip"},
		{target: "results/fy2024.zip", want: "fy2024.zip"},
		{target: "https://portal.example.com/", wantErr: true},
	}

	for _, tt := range tests {
		name, err := destName(tt.target)
		if tt.wantErr {
			require.Error(t, err, "target %q", tt.target)
			continue
		}
		require.NoError(t, err, "target %q", tt.target)
		assert.Equal(t, tt.want, name, "target %q", tt.target)
	}
}
