package protocol

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaledHeatTarget(t *testing.T) {
	t.Parallel()

	v, err := heatTargetCoder.Decode("2982")
	require.NoError(t, err)
	assert.Equal(t, 298.2, v)

	s, err := heatTargetCoder.Encode(298.2)
	require.NoError(t, err)
	assert.Equal(t, "2982", s)

	s, err = heatTargetCoder.Encode(1.5)
	require.NoError(t, err)
	assert.Equal(t, "0015", s)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err = heatTargetCoder.Encode(bad)
		assert.True(t, errors.Is(err, ErrOutOfRange), "value=%v err=%v", bad, err)
	}
	for k := 2730; k <= 3100; k++ {
		v, err := heatTargetCoder.Decode(heatTargetToken(t, float64(k)/10))
		require.NoError(t, err)
		assert.Equal(t, float64(k)/10, v)
	}
}

func heatTargetToken(t testing.TB, v float64) string {
	s, err := heatTargetCoder.Encode(v)
	require.NoError(t, err)
	return s
}

func TestDecimal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		coder  *decimalCoder
		token  string
		value  int
		encode string
	}{
		{filterLifeCoder, "3297", 3297, "3297"},
		{filterLifeCoder, "0042", 42, "0042"},
		{filterLifeCoder, "42", 42, "0042"},
		{rssiCoder, "-36", -36, "-36"},
		{rssiCoder, "0", 0, "0"},
	}
	for _, c := range cases {
		v, err := c.coder.Decode(c.token)
		require.NoError(t, err, "field=%s token=%s", c.coder.field, c.token)
		assert.Equal(t, c.value, v)
		s, err := c.coder.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, c.encode, s)
	}

	_, err := filterLifeCoder.Encode(-1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = filterLifeCoder.Decode("")
	var ne *NumericParseError
	assert.True(t, errors.As(err, &ne))
}

func TestEnumRoundTrip(t *testing.T) {
	t.Parallel()

	checkEnum(t, fanModeCoder, 3)
	checkEnum(t, fanStateCoder, 2)
	checkEnum(t, fanSpeedCoder, 11)
	checkEnum(t, qualityTargetCoder, 3)
	checkEnum(t, oscillationCoder, 2)
	checkEnum(t, airQualityCoder, 2)
	checkEnum(t, nightModeCoder, 2)
	checkEnum(t, heatModeCoder, 2)
	checkEnum(t, heatStateCoder, 2)
	checkEnum(t, fanFocusCoder, 2)
	checkEnum(t, tiltStateCoder, 2)
}

func checkEnum[T ~uint8](t *testing.T, c *enumCoder[T], n int) {
	t.Helper()
	tokens := c.Tokens()
	require.Len(t, tokens, n, "field=%s", c.field)
	for _, token := range tokens {
		v, err := c.Decode(token)
		require.NoError(t, err)
		assert.NotZero(t, v, "field=%s token=%s zero value must stay unset", c.field, token)
		back, err := c.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, token, back)
	}
	var zero T
	_, err := c.Encode(zero)
	assert.True(t, errors.Is(err, ErrOutOfRange), "field=%s", c.field)
	_, err = c.Decode("BOGUS")
	var ue *UnknownEnumTokenError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, c.field, ue.Field)
}

func TestFanSpeedTokens(t *testing.T) {
	t.Parallel()

	s, err := fanSpeedCoder.Encode(7)
	require.NoError(t, err)
	assert.Equal(t, "0007", s)
	assert.Equal(t, "0010", FanSpeed(10).String())
	assert.Equal(t, "AUTO", FanSpeedAuto.String())
	assert.Equal(t, "FanSpeed(11)", FanSpeed(11).String())
}

func TestFanFocusTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"OFF", "On"}, fanFocusCoder.Tokens())
	for _, token := range []string{"On", "ON"} {
		v, err := ParseFanFocusMode(token)
		require.NoError(t, err, "token=%s", token)
		assert.Equal(t, FanFocusOn, v)
	}
	s, err := fanFocusCoder.Encode(FanFocusOn)
	require.NoError(t, err)
	assert.Equal(t, "On", s)
	_, err = ParseFanFocusMode("on")
	var ue *UnknownEnumTokenError
	assert.True(t, errors.As(err, &ue))
}

func TestCoderRegistry(t *testing.T) {
	t.Parallel()

	wire := []string{
		"fmod", "fnst", "fnsp", "qtar", "oson", "rhtm", "filf", "ercd",
		"nmod", "wacd", "hmod", "hmax", "hsta", "ffoc", "tilt",
		"srsc", "dstv", "tzid", "rssi",
	}
	assert.ElementsMatch(t, wire, CoderFields())
	for _, f := range wire {
		c, ok := LookupCoder(f)
		require.True(t, ok, f)
		assert.Equal(t, f, c.Field())
	}
	_, ok := LookupCoder("nope")
	assert.False(t, ok)

	c, _ := LookupCoder("fnsp")
	assert.NoError(t, c.Check("0003"))
	assert.Error(t, c.Check("3"))
	c, _ = LookupCoder("ercd")
	assert.NoError(t, c.Check("anything"))
}

func TestLenientFloat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 73.0, lenientFloat("0073"))
	assert.Equal(t, 0.0, lenientFloat("OFF"))
	assert.Equal(t, 0.0, lenientFloat(""))
	assert.Equal(t, -1.5, lenientFloat("-1.5"))
}
