// Package synthetic produces realistic login traffic for load tests and demo
// environments. Profiles implement the fingerprint probe environment so the
// generated components go through the same derivation as real clients.
package synthetic

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/fingerprint"
)

// ErrBlocked simulates a privacy setting disabling a probe subsystem.
var ErrBlocked = errors.New("probe blocked")

// DeviceProfile is a canned browser/device combination. It implements
// fingerprint.Environment so a profile can be fed straight into the
// fingerprint generator.
type DeviceProfile struct {
	Name          string
	UA            string
	Lang          string
	Plat          string
	ScreenW       int
	ScreenH       int
	ViewportW     int
	ViewportH     int
	Depth         int
	TZOffset      int
	Canvas        string
	GLVendor      string
	GLRenderer    string
	GLExtensions  []string
	Audio         string
	Fonts         []string
	Cores         int
	MemoryGB      float64
	Cookies       bool
	DNT           bool
	CanvasBlocked bool
	WebGLBlocked  bool
}

func (p *DeviceProfile) UserAgent() (string, error) { return p.UA, nil }
func (p *DeviceProfile) Language() (string, error)  { return p.Lang, nil }
func (p *DeviceProfile) Platform() (string, error)  { return p.Plat, nil }

func (p *DeviceProfile) ScreenGeometry() (int, int, error) {
	return p.ScreenW, p.ScreenH, nil
}

func (p *DeviceProfile) ViewportGeometry() (int, int, error) {
	return p.ViewportW, p.ViewportH, nil
}

func (p *DeviceProfile) ColorDepth() (int, error)            { return p.Depth, nil }
func (p *DeviceProfile) TimezoneOffsetMinutes() (int, error) { return p.TZOffset, nil }

func (p *DeviceProfile) CanvasSignature() (string, error) {
	if p.CanvasBlocked {
		return "", ErrBlocked
	}
	return p.Canvas, nil
}

func (p *DeviceProfile) WebGL() (string, string, []string, error) {
	if p.WebGLBlocked {
		return "", "", nil, ErrBlocked
	}
	return p.GLVendor, p.GLRenderer, p.GLExtensions, nil
}

func (p *DeviceProfile) AudioSignature() (string, error)   { return p.Audio, nil }
func (p *DeviceProfile) DetectedFonts() ([]string, error)  { return p.Fonts, nil }
func (p *DeviceProfile) HardwareConcurrency() (int, error) { return p.Cores, nil }
func (p *DeviceProfile) DeviceMemoryGB() (float64, error)  { return p.MemoryGB, nil }
func (p *DeviceProfile) CookiesEnabled() (bool, error)     { return p.Cookies, nil }
func (p *DeviceProfile) DoNotTrack() (bool, error)         { return p.DNT, nil }

// Profiles returns the canned device population, from well-behaved desktops
// through a privacy-hardened browser and a scripted client.
func Profiles() []*DeviceProfile {
	return []*DeviceProfile{
		{
			Name:    "macbook-chrome",
			UA:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			Lang:    "en-US",
			Plat:    "MacIntel",
			ScreenW: 2560, ScreenH: 1600,
			ViewportW: 1440, ViewportH: 812,
			Depth:        30,
			TZOffset:     300,
			Canvas:       "c9a1e2f48b3d5e10",
			GLVendor:     "Google Inc. (Apple)",
			GLRenderer:   "ANGLE (Apple, Apple M2, OpenGL 4.1)",
			GLExtensions: []string{"EXT_color_buffer_float", "OES_texture_float_linear", "WEBGL_debug_renderer_info"},
			Audio:        "124.04347527516074",
			Fonts:        []string{"Arial", "Helvetica Neue", "Menlo", "Monaco", "Times New Roman", "Courier New", "Georgia"},
			Cores:        10,
			MemoryGB:     16,
			Cookies:      true,
		},
		{
			Name:    "windows-firefox",
			UA:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
			Lang:    "en-GB",
			Plat:    "Win32",
			ScreenW: 1920, ScreenH: 1080,
			ViewportW: 1536, ViewportH: 731,
			Depth:        24,
			TZOffset:     0,
			Canvas:       "7f2bc04d91ea6358",
			GLVendor:     "Mozilla",
			GLRenderer:   "ANGLE (NVIDIA, NVIDIA GeForce RTX 3060 Direct3D11 vs_5_0 ps_5_0)",
			GLExtensions: []string{"EXT_color_buffer_float", "WEBGL_compressed_texture_s3tc"},
			Audio:        "35.73833402246237",
			Fonts:        []string{"Arial", "Calibri", "Cambria", "Consolas", "Segoe UI", "Tahoma", "Verdana", "Georgia"},
			Cores:        8,
			MemoryGB:     8,
			Cookies:      true,
			DNT:          true,
		},
		{
			Name:    "iphone-safari",
			UA:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
			Lang:    "en-US",
			Plat:    "iPhone",
			ScreenW: 390, ScreenH: 844,
			ViewportW: 390, ViewportH: 664,
			Depth:        24,
			TZOffset:     480,
			Canvas:       "3e8fa611c07d2b94",
			GLVendor:     "Apple Inc.",
			GLRenderer:   "Apple GPU",
			GLExtensions: []string{"EXT_color_buffer_half_float"},
			Audio:        "124.0434806260746",
			Fonts:        []string{"Helvetica", "Helvetica Neue", "Courier", "Georgia", "Times New Roman", "Arial"},
			Cores:        6,
			MemoryGB:     6,
			Cookies:      true,
		},
		{
			Name:    "privacy-hardened",
			UA:      "Mozilla/5.0 (Windows NT 10.0; rv:128.0) Gecko/20100101 Firefox/128.0",
			Lang:    "en-US",
			Plat:    "Win32",
			ScreenW: 1400, ScreenH: 900,
			ViewportW: 1400, ViewportH: 900,
			Depth:         24,
			TZOffset:      0,
			Fonts:         []string{"Arial", "Courier New", "Times New Roman"},
			Cores:         4,
			MemoryGB:      4,
			Cookies:       false,
			DNT:           true,
			CanvasBlocked: true,
			WebGLBlocked:  true,
		},
		{
			Name:    "scripted-client",
			UA:      "python-requests/2.31.0",
			Lang:    "",
			Plat:    "Linux x86_64",
			ScreenW: 1024, ScreenH: 768,
			ViewportW: 1024, ViewportH: 768,
			Depth:        24,
			TZOffset:     0,
			Canvas:       "0000000000000000",
			Audio:        "0",
			Fonts:        []string{"DejaVu Sans"},
			Cores:        2,
			MemoryGB:     2,
			Cookies:      false,
			WebGLBlocked: true,
		},
	}
}

// Event is one synthetic login attempt ready to submit to the record endpoint.
type Event struct {
	UserID        uuid.UUID
	Profile       *DeviceProfile
	Components    map[string]any
	FingerprintID string
	IPAddress     string
	Success       bool
	FailureReason string
	LoginMethod   string
}

// Generator draws events from a fixed user/device/IP population with a
// configurable failure rate.
type Generator struct {
	rng         *rand.Rand
	fpGen       *fingerprint.Generator
	profiles    []*DeviceProfile
	users       []uuid.UUID
	failureRate float64
}

// NewGenerator creates a Generator over a population of users. The seed makes
// runs reproducible.
func NewGenerator(seed int64, userCount int, failureRate float64) *Generator {
	if userCount <= 0 {
		userCount = 10
	}
	rng := rand.New(rand.NewSource(seed))

	users := make([]uuid.UUID, userCount)
	for i := range users {
		users[i] = uuid.New()
	}

	return &Generator{
		rng:         rng,
		fpGen:       fingerprint.NewGenerator(),
		profiles:    Profiles(),
		users:       users,
		failureRate: failureRate,
	}
}

var failureReasons = []string{
	"invalid_credentials",
	"account_locked",
	"expired_password",
}

var loginMethods = []string{"password", "password", "password", "oauth_google", "passkey"}

// Next generates one event. Fingerprint components go through the real probe
// pipeline so blocked-probe profiles produce genuine fallback fingerprints.
func (g *Generator) Next() (*Event, error) {
	profile := g.profiles[g.rng.Intn(len(g.profiles))]

	fp, err := g.fpGen.Generate(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to generate fingerprint for %s: %w", profile.Name, err)
	}

	event := &Event{
		UserID:        g.users[g.rng.Intn(len(g.users))],
		Profile:       profile,
		Components:    fp.Components,
		FingerprintID: fp.ID,
		IPAddress:     g.randomIP(),
		Success:       g.rng.Float64() >= g.failureRate,
		LoginMethod:   loginMethods[g.rng.Intn(len(loginMethods))],
	}
	if !event.Success {
		event.FailureReason = failureReasons[g.rng.Intn(len(failureReasons))]
	}

	return event, nil
}

func (g *Generator) randomIP() string {
	// Documentation and benchmarking ranges, never routable
	blocks := []string{"203.0.113", "198.51.100", "192.0.2"}
	return fmt.Sprintf("%s.%d", blocks[g.rng.Intn(len(blocks))], 1+g.rng.Intn(254))
}
