package fingerprint

import "fmt"

// Component names, in probe order. The order is fixed so two generators over
// the same environment always agree.
const (
	CompUserAgent           = "userAgent"
	CompLanguage            = "language"
	CompPlatform            = "platform"
	CompScreen              = "screen"
	CompViewport            = "viewport"
	CompColorDepth          = "colorDepth"
	CompTimezoneOffset      = "timezoneOffset"
	CompCanvas              = "canvas"
	CompWebGLVendor         = "webglVendor"
	CompWebGLRenderer       = "webglRenderer"
	CompWebGLExtensions     = "webglExtensions"
	CompAudio               = "audio"
	CompFonts               = "fonts"
	CompHardwareConcurrency = "hardwareConcurrency"
	CompDeviceMemory        = "deviceMemory"
	CompCookiesEnabled      = "cookiesEnabled"
	CompDoNotTrack          = "doNotTrack"
)

// ComponentNames returns every recognized component, in probe order.
func ComponentNames() []string {
	return []string{
		CompUserAgent, CompLanguage, CompPlatform, CompScreen, CompViewport,
		CompColorDepth, CompTimezoneOffset, CompCanvas, CompWebGLVendor,
		CompWebGLRenderer, CompWebGLExtensions, CompAudio, CompFonts,
		CompHardwareConcurrency, CompDeviceMemory, CompCookiesEnabled,
		CompDoNotTrack,
	}
}

// minimalComponents is the whole-fingerprint fallback set used when an entire
// probe subsystem is blocked (canvas/WebGL disabled by privacy settings).
var minimalComponents = []string{
	CompUserAgent, CompLanguage, CompPlatform, CompScreen,
	CompTimezoneOffset, CompCookiesEnabled,
}

// Environment exposes the raw device/browser characteristics a probe reads.
// Each accessor returns its value or an error; errors degrade that one
// component to the Unavailable sentinel.
type Environment interface {
	UserAgent() (string, error)
	Language() (string, error)
	Platform() (string, error)
	ScreenGeometry() (width, height int, err error)
	ViewportGeometry() (width, height int, err error)
	ColorDepth() (int, error)
	TimezoneOffsetMinutes() (int, error)
	CanvasSignature() (string, error)
	WebGL() (vendor, renderer string, extensions []string, err error)
	AudioSignature() (string, error)
	DetectedFonts() ([]string, error)
	HardwareConcurrency() (int, error)
	DeviceMemoryGB() (float64, error)
	CookiesEnabled() (bool, error)
	DoNotTrack() (bool, error)
}

// Generator composes a fingerprint from an Environment by running the fixed
// ordered probe list. Generate never fails on a single blocked probe.
type Generator struct {
	hasher Hasher
}

// NewGenerator returns a Generator using SHA-256. Pass a different Hasher only
// to exercise the degraded path.
func NewGenerator() *Generator {
	return &Generator{hasher: SHA256Hasher{}}
}

// NewGeneratorWithHasher is used by tests that force the fallback hash.
func NewGeneratorWithHasher(h Hasher) *Generator {
	return &Generator{hasher: h}
}

type probe struct {
	name string
	run  func(env Environment, out map[string]any) error
}

func probeList() []probe {
	return []probe{
		{CompUserAgent, func(env Environment, out map[string]any) error {
			v, err := env.UserAgent()
			out[CompUserAgent] = v
			return err
		}},
		{CompLanguage, func(env Environment, out map[string]any) error {
			v, err := env.Language()
			out[CompLanguage] = v
			return err
		}},
		{CompPlatform, func(env Environment, out map[string]any) error {
			v, err := env.Platform()
			out[CompPlatform] = v
			return err
		}},
		{CompScreen, func(env Environment, out map[string]any) error {
			w, h, err := env.ScreenGeometry()
			out[CompScreen] = fmt.Sprintf("%dx%d", w, h)
			return err
		}},
		{CompViewport, func(env Environment, out map[string]any) error {
			w, h, err := env.ViewportGeometry()
			out[CompViewport] = fmt.Sprintf("%dx%d", w, h)
			return err
		}},
		{CompColorDepth, func(env Environment, out map[string]any) error {
			v, err := env.ColorDepth()
			out[CompColorDepth] = v
			return err
		}},
		{CompTimezoneOffset, func(env Environment, out map[string]any) error {
			v, err := env.TimezoneOffsetMinutes()
			out[CompTimezoneOffset] = v
			return err
		}},
		{CompCanvas, func(env Environment, out map[string]any) error {
			v, err := env.CanvasSignature()
			out[CompCanvas] = v
			return err
		}},
		{CompWebGLVendor, func(env Environment, out map[string]any) error {
			vendor, renderer, exts, err := env.WebGL()
			out[CompWebGLVendor] = vendor
			out[CompWebGLRenderer] = renderer
			out[CompWebGLExtensions] = exts
			return err
		}},
		{CompAudio, func(env Environment, out map[string]any) error {
			v, err := env.AudioSignature()
			out[CompAudio] = v
			return err
		}},
		{CompFonts, func(env Environment, out map[string]any) error {
			v, err := env.DetectedFonts()
			out[CompFonts] = v
			return err
		}},
		{CompHardwareConcurrency, func(env Environment, out map[string]any) error {
			v, err := env.HardwareConcurrency()
			out[CompHardwareConcurrency] = v
			return err
		}},
		{CompDeviceMemory, func(env Environment, out map[string]any) error {
			v, err := env.DeviceMemoryGB()
			out[CompDeviceMemory] = v
			return err
		}},
		{CompCookiesEnabled, func(env Environment, out map[string]any) error {
			v, err := env.CookiesEnabled()
			out[CompCookiesEnabled] = v
			return err
		}},
		{CompDoNotTrack, func(env Environment, out map[string]any) error {
			v, err := env.DoNotTrack()
			out[CompDoNotTrack] = v
			return err
		}},
	}
}

// Generate runs every probe and hashes the canonical component map. A probe
// that errors or panics records the Unavailable sentinel for its components
// and marks the result as fallback. If both the canvas and WebGL subsystems
// are blocked the whole fingerprint degrades to the minimal component set.
func (g *Generator) Generate(env Environment) (*Fingerprint, error) {
	components := make(map[string]any, len(ComponentNames()))
	anyFailed := false

	for _, p := range probeList() {
		if err := runProbe(p, env, components); err != nil {
			anyFailed = true
		}
	}

	// Whole-subsystem block: recompute from the minimal set only.
	if components[CompCanvas] == Unavailable && components[CompWebGLRenderer] == Unavailable {
		minimal := make(map[string]any, len(minimalComponents))
		for _, name := range minimalComponents {
			minimal[name] = components[name]
		}
		components = minimal
		anyFailed = true
	}

	id, hashFellBack, err := hashComponents(components, g.hasher)
	if err != nil {
		return nil, fmt.Errorf("failed to hash components: %w", err)
	}

	return &Fingerprint{
		ID:         id,
		Components: components,
		Fallback:   anyFailed || hashFellBack,
	}, nil
}

// runProbe isolates a single probe: a panic or error marks the probe's
// components Unavailable without touching the rest.
func runProbe(p probe, env Environment, out map[string]any) (err error) {
	staged := make(map[string]any)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe %s panicked: %v", p.name, r)
		}
		if err != nil {
			for k := range staged {
				out[k] = Unavailable
			}
			if len(staged) == 0 {
				out[p.name] = Unavailable
			}
			return
		}
		for k, v := range staged {
			out[k] = v
		}
	}()

	err = p.run(env, staged)
	return err
}
