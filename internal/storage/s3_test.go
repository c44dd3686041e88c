package storage

import "testing"

func TestS3_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store S3
		key   string
		want  string
	}{
		{
			name:  "minio path style",
			store: S3{bucket: "media", endpoint: "http://localhost:9000", pathStyle: true},
			key:   "recipes/cake.png",
			want:  "http://localhost:9000/media/recipes/cake.png",
		},
		{
			name:  "custom endpoint virtual host",
			store: S3{bucket: "media", endpoint: "https://media.example.com"},
			key:   "recipes/cake.png",
			want:  "https://media.example.com/recipes/cake.png",
		},
		{
			name:  "aws",
			store: S3{bucket: "recipebox-media", region: "eu-west-1"},
			key:   "recipes/cake.png",
			want:  "https://recipebox-media.s3.eu-west-1.amazonaws.com/recipes/cake.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.store.URL(tt.key); got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
