package satellite

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"site-mapper/internal/background"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_URL(t *testing.T) {
	c := NewClient("k&y", WithURLTemplate("https://maps.test/s?c={address}&z={zoom}&s={width}x{height}&key={key}"), WithZoom(18), WithSize(640, 448))

	assert.Equal(t, "https://maps.test/s?c=12+Main+St%2C+Springfield&z=18&s=640x448&key=k%26y", c.URL("12 Main St, Springfield"))
}

func TestClient_Fetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("center")
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				img.SetRGBA(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
			}
		}
		w.Header().Set("Content-Type", "image/png")
		require.NoError(t, png.Encode(w, img))
	}))
	defer srv.Close()

	c := NewClient("key", WithURLTemplate(srv.URL+"/map?center={address}&key={key}"), WithSize(50, 35))
	bg, err := c.Fetch(context.Background(), "  1 Depot Rd ")
	require.NoError(t, err)

	assert.Equal(t, "1 Depot Rd", gotQuery)
	assert.Equal(t, background.SourceSatellite, bg.Source)
	assert.Equal(t, 50, bg.Width())
	assert.Equal(t, 35, bg.Height())
	r, _, _, _ := bg.Image.At(10, 10).RGBA()
	assert.InDelta(t, 128, r>>8, 2)
}

func TestClient_FetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("key", WithURLTemplate(srv.URL+"?a={address}&k={key}"))

	_, err := c.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoAddress)

	_, err = c.Fetch(context.Background(), "somewhere")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Contains(t, se.Body, "quota exceeded")

	_, err = NewClient("", WithURLTemplate(srv.URL+"?k={key}")).Fetch(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestClient_FetchBadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	_, err := NewClient("", WithURLTemplate(srv.URL+"?a={address}")).Fetch(context.Background(), "x")
	assert.Error(t, err)
}

func TestClient_FetchHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient("", WithURLTemplate(srv.URL+"?a={address}")).Fetch(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
