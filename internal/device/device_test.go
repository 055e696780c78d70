package device

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uaIPhone        = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1"
	uaIPad          = "Mozilla/5.0 (iPad; CPU OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1"
	uaAndroidPhone  = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Mobile Safari/537.36"
	uaAndroidTablet = "Mozilla/5.0 (Linux; Android 14; SM-X710) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	uaMacSafari     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15"
	uaWindowsChrome = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	uaFirefoxMobile = "Mozilla/5.0 (Android 14; Mobile; rv:127.0) Gecko/127.0 Firefox/127.0"
	uaKindle        = "Mozilla/5.0 (Linux; U; en-us; KFTT Build/IML74K) AppleWebKit/537.36 (KHTML, like Gecko) Silk/3.68 like Chrome/39.0.2171.93 Safari/537.36"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		hint string
		want Class
	}{
		{name: "iPhone", ua: uaIPhone, want: Mobile},
		{name: "iPad", ua: uaIPad, want: Tablet},
		{name: "Android phone", ua: uaAndroidPhone, want: Mobile},
		{name: "Android tablet", ua: uaAndroidTablet, want: Tablet},
		{name: "Firefox Android", ua: uaFirefoxMobile, want: Mobile},
		{name: "Kindle", ua: uaKindle, want: Tablet},
		{name: "Mac Safari", ua: uaMacSafari, want: Desktop},
		{name: "Windows Chrome", ua: uaWindowsChrome, want: Desktop},
		{name: "empty", ua: "", want: Desktop},
		{name: "hint mobile wins", ua: uaWindowsChrome, hint: "?1", want: Mobile},
		{name: "hint desktop overrides phone UA", ua: uaAndroidPhone, hint: "?0", want: Desktop},
		{name: "hint desktop keeps tablet", ua: uaAndroidTablet, hint: "?0", want: Tablet},
		{name: "unknown hint ignored", ua: uaIPhone, hint: "maybe", want: Mobile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("User-Agent", tt.ua)
			if tt.hint != "" {
				req.Header.Set(HeaderMobileHint, tt.hint)
			}
			assert.Equal(t, tt.want, Classify(req))
		})
	}
}

func TestIsSafariBrowser(t *testing.T) {
	assert.True(t, IsSafariBrowser(uaMacSafari))
	assert.True(t, IsSafariBrowser(uaIPhone))
	assert.False(t, IsSafariBrowser(uaWindowsChrome))
	assert.False(t, IsSafariBrowser(uaFirefoxMobile))
}

func TestHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/device", nil)
	req.Header.Set("User-Agent", uaIPad)
	rec := httptest.NewRecorder()

	Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sec-CH-UA-Mobile", rec.Header().Get("Accept-CH"))
	assert.Contains(t, rec.Header().Get("Vary"), "User-Agent")

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, Tablet, body.Class)
	assert.Equal(t, Breakpoints{Mobile: 768, Tablet: 1024}, body.Breakpoints)
	assert.True(t, body.Safari)
}
