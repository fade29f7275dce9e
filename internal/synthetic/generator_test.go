package synthetic

import (
	"testing"

	"github.com/loginwatch/loginwatch/internal/fingerprint"
	"github.com/stretchr/testify/assert"
)

func profileByName(t *testing.T, name string) *DeviceProfile {
	t.Helper()
	for _, p := range Profiles() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no profile named %s", name)
	return nil
}

func TestNext_SameSeedSameSequence(t *testing.T) {
	a := NewGenerator(42, 5, 0.2)
	b := NewGenerator(42, 5, 0.2)

	for i := 0; i < 50; i++ {
		ea, err := a.Next()
		assert.NoError(t, err)
		eb, err := b.Next()
		assert.NoError(t, err)

		assert.Equal(t, ea.Profile.Name, eb.Profile.Name)
		assert.Equal(t, ea.FingerprintID, eb.FingerprintID)
		assert.Equal(t, ea.IPAddress, eb.IPAddress)
		assert.Equal(t, ea.Success, eb.Success)
		assert.Equal(t, ea.LoginMethod, eb.LoginMethod)
		assert.Equal(t, ea.FailureReason, eb.FailureReason)
	}
}

func TestNext_FailureRateExtremes(t *testing.T) {
	alwaysFail := NewGenerator(1, 3, 1.0)
	for i := 0; i < 20; i++ {
		event, err := alwaysFail.Next()
		assert.NoError(t, err)
		assert.False(t, event.Success)
		assert.NotEmpty(t, event.FailureReason)
	}

	neverFail := NewGenerator(1, 3, 0.0)
	for i := 0; i < 20; i++ {
		event, err := neverFail.Next()
		assert.NoError(t, err)
		assert.True(t, event.Success)
		assert.Empty(t, event.FailureReason)
	}
}

func TestNext_FingerprintsAreValid(t *testing.T) {
	g := NewGenerator(7, 3, 0.1)

	for i := 0; i < 30; i++ {
		event, err := g.Next()
		assert.NoError(t, err)
		assert.True(t, fingerprint.ValidID(event.FingerprintID), "profile %s produced invalid id %q", event.Profile.Name, event.FingerprintID)
		assert.NotEmpty(t, event.Components)
	}
}

func TestNext_StableFingerprintPerProfile(t *testing.T) {
	g := NewGenerator(3, 2, 0.0)

	seen := make(map[string]string)
	for i := 0; i < 100; i++ {
		event, err := g.Next()
		assert.NoError(t, err)
		if prev, ok := seen[event.Profile.Name]; ok {
			assert.Equal(t, prev, event.FingerprintID, "profile %s drifted", event.Profile.Name)
		} else {
			seen[event.Profile.Name] = event.FingerprintID
		}
	}
}

func TestPrivacyHardenedProfileFallsBack(t *testing.T) {
	profile := profileByName(t, "privacy-hardened")

	fp, err := fingerprint.NewGenerator().Generate(profile)
	assert.NoError(t, err)
	assert.True(t, fp.Fallback)
}

func TestScriptedClientProfile(t *testing.T) {
	profile := profileByName(t, "scripted-client")

	fp, err := fingerprint.NewGenerator().Generate(profile)
	assert.NoError(t, err)
	assert.True(t, fingerprint.ValidID(fp.ID))
	// WebGL components degrade rather than breaking the whole set
	assert.Equal(t, fingerprint.Unavailable, fp.Components[fingerprint.CompWebGLVendor])
}

func TestNext_IPsStayInDocumentationRanges(t *testing.T) {
	g := NewGenerator(9, 3, 0.5)

	for i := 0; i < 30; i++ {
		event, err := g.Next()
		assert.NoError(t, err)
		assert.Regexp(t, `^(203\.0\.113|198\.51\.100|192\.0\.2)\.\d{1,3}$`, event.IPAddress)
	}
}
