package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paul-heyse/submarket-screen/internal/config"
	"github.com/paul-heyse/submarket-screen/internal/domain"
)

func constURL(base string) func(domain.Submarket) string {
	return func(domain.Submarket) string { return base }
}

func TestNewCensusEconomicConnector_RequiresAPIKeyWhenEnvUnset(t *testing.T) {
	t.Setenv("CENSUS_API_KEY", "")
	_, err := NewCensusEconomicConnector(testRuntime(), constURL(""), "")
	require.Error(t, err)
}

func TestNewCensusEconomicConnector_AcceptsExplicitKey(t *testing.T) {
	c, err := NewCensusEconomicConnector(testRuntime(), constURL(""), "explicit-key")
	require.NoError(t, err)
	assert.Equal(t, "census-economic", c.SourceID())
	assert.Equal(t, config.TTLSemiStatic, c.DeclaredTTL())
}

func TestCensusEconomicConnector_ParseAndValidate(t *testing.T) {
	c, err := NewCensusEconomicConnector(testRuntime(), constURL(""), "key")
	require.NoError(t, err)
	raw := []byte(`{"median_household_income":75000,"population_growth_rate":2.1,"unemployment_rate":4.5}`)
	parsed, err := c.Parse(raw)
	require.NoError(t, err)
	corrected, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 4.5, corrected.(EconomicPayload).UnemploymentRate)
}

func TestCensusEconomicConnector_ValidateFailsOnMissingRequired(t *testing.T) {
	c, err := NewCensusEconomicConnector(testRuntime(), constURL(""), "key")
	require.NoError(t, err)
	parsed, err := c.Parse([]byte(`{"population_growth_rate":2.1}`))
	require.NoError(t, err)
	_, _, err = c.Validate(parsed)
	require.Error(t, err)
}

func TestCensusEconomicConnector_ValidateClampsOutOfRangeUnemploymentRate(t *testing.T) {
	c, err := NewCensusEconomicConnector(testRuntime(), constURL(""), "key")
	require.NoError(t, err)
	parsed, err := c.Parse([]byte(`{"median_household_income":50000,"population_growth_rate":1,"unemployment_rate":-5}`))
	require.NoError(t, err)
	corrected, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, 0.0, corrected.(EconomicPayload).UnemploymentRate)
}

func TestCensusEconomicConnector_ValidateClampsAboveMaxUnemploymentRate(t *testing.T) {
	c, err := NewCensusEconomicConnector(testRuntime(), constURL(""), "key")
	require.NoError(t, err)
	parsed, err := c.Parse([]byte(`{"median_household_income":50000,"population_growth_rate":1,"unemployment_rate":150}`))
	require.NoError(t, err)
	corrected, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, 100.0, corrected.(EconomicPayload).UnemploymentRate)
}

func TestBuildingPermitConnector_FetchParseValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"units_permitted_trailing_12mo":120,"existing_units":5000}`))
	}))
	defer srv.Close()

	c := NewBuildingPermitConnector(testRuntime(), constURL(srv.URL))
	assert.Equal(t, "building-permits", c.SourceID())
	assert.Equal(t, config.TTLDynamic, c.DeclaredTTL())

	raw, err := c.Fetch(context.Background(), domain.Submarket{ID: "denver-lodo"})
	require.NoError(t, err)
	parsed, err := c.Parse(raw)
	require.NoError(t, err)
	_, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestBuildingPermitConnector_ValidateWarnsAndClampsOutOfRangeExistingUnits(t *testing.T) {
	c := NewBuildingPermitConnector(testRuntime(), constURL(""))
	parsed, err := c.Parse([]byte(`{"units_permitted_trailing_12mo":10,"existing_units":0}`))
	require.NoError(t, err)
	corrected, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, 1.0, corrected.(PermitPayload).ExistingUnits)
}

func TestBuildingPermitConnector_ValidateFailsOnMissingRequired(t *testing.T) {
	c := NewBuildingPermitConnector(testRuntime(), constURL(""))
	parsed, err := c.Parse([]byte(`{"units_permitted_trailing_12mo":10}`))
	require.NoError(t, err)
	_, _, err = c.Validate(parsed)
	require.Error(t, err)
}

func TestPOIConnector_ValidateWarnsOnOutOfRangeCoordinates(t *testing.T) {
	c := NewPOIConnector(testRuntime(), constURL(""))
	assert.Equal(t, config.TTLStatic, c.DeclaredTTL())
	parsed, err := c.Parse([]byte(`{"points":[{"category":"grocery","location":{"lat":200,"lng":10}}]}`))
	require.NoError(t, err)
	_, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestPOIConnector_ValidatePassesForValidPoints(t *testing.T) {
	c := NewPOIConnector(testRuntime(), constURL(""))
	parsed, err := c.Parse([]byte(`{"points":[{"category":"park","location":{"lat":39.7,"lng":-104.9}}]}`))
	require.NoError(t, err)
	_, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestWildfireHazardConnector_ParseAndValidate(t *testing.T) {
	c := NewWildfireHazardConnector(testRuntime(), constURL(""))
	parsed, err := c.Parse([]byte(`{"burn_probability":0.2,"fuel_load_index":40,"wui_exposure_share":0.3}`))
	require.NoError(t, err)
	_, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestWildfireHazardConnector_ValidateWarnsAndClampsOutOfRangeProbability(t *testing.T) {
	c := NewWildfireHazardConnector(testRuntime(), constURL(""))
	parsed, err := c.Parse([]byte(`{"burn_probability":1.5,"fuel_load_index":40,"wui_exposure_share":0.3}`))
	require.NoError(t, err)
	corrected, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, 1.0, corrected.(HazardPayload).BurnProbability)
}

func TestWildfireHazardConnector_ValidateFailsOnMissingRequired(t *testing.T) {
	c := NewWildfireHazardConnector(testRuntime(), constURL(""))
	parsed, err := c.Parse([]byte(`{"fuel_load_index":40,"wui_exposure_share":0.3}`))
	require.NoError(t, err)
	_, _, err = c.Validate(parsed)
	require.Error(t, err)
}

func TestFloodOverlayConnector_ParseAndValidate(t *testing.T) {
	c := NewFloodOverlayConnector(testRuntime(), constURL(""))
	assert.Equal(t, "flood-overlay", c.SourceID())
	parsed, err := c.Parse([]byte(`{"floodplain_share":0.1,"high_risk_zone_ae_share":0.05}`))
	require.NoError(t, err)
	_, warnings, err := c.Validate(parsed)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestFetch_ComposesFetchParseValidateIntoConnectorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"floodplain_share":0.1,"high_risk_zone_ae_share":0.05}`))
	}))
	defer srv.Close()

	c := NewFloodOverlayConnector(testRuntime(), constURL(srv.URL))
	resp, err := Fetch(context.Background(), c, domain.Submarket{ID: "boise-downtown"}, testRuntime().Clock.Now())
	require.NoError(t, err)
	assert.Equal(t, "flood-overlay", resp.SourceID)
	assert.True(t, resp.Complete)
	assert.Empty(t, resp.Warnings)
}

func TestFetch_PropagatesClampedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"floodplain_share":2.0,"high_risk_zone_ae_share":0.05}`))
	}))
	defer srv.Close()

	c := NewFloodOverlayConnector(testRuntime(), constURL(srv.URL))
	resp, err := Fetch(context.Background(), c, domain.Submarket{ID: "boise-downtown"}, testRuntime().Clock.Now())
	require.NoError(t, err)
	assert.Len(t, resp.Warnings, 1)
	assert.Equal(t, 1.0, resp.Payload.(FloodPayload).FloodplainShare)
}
