package protocol

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/airlink/helpers"
)

func randomToken[T ~uint8](t testing.TB, pick func(int) int, c *enumCoder[T]) T {
	tokens := c.Tokens()
	v, err := c.Decode(tokens[pick(len(tokens))])
	require.NoError(t, err)
	return v
}

func TestCurrentStateRoundTrip(t *testing.T) {
	t.Parallel()

	b, err := EncodeMessage(sampleCurrentStateValue)
	require.NoError(t, err)
	m, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, sampleCurrentStateValue, m)

	rnd := helpers.RandUnix()
	for i := 0; i < 500; i++ {
		expect := CurrentState{
			Time:        FormatTime(time.Unix(rnd.Int63n(1<<32), int64(rnd.Intn(1000))*int64(time.Millisecond))),
			ModeReason:  "RAPP",
			StateReason: "MODE",
			Dial:        "OFF",
			RSSI:        -rnd.Intn(100),
			ProductState: ProductState{
				FanMode:              randomToken(t, rnd.Intn, fanModeCoder),
				FanState:             randomToken(t, rnd.Intn, fanStateCoder),
				FanSpeed:             randomToken(t, rnd.Intn, fanSpeedCoder),
				QualityTarget:        randomToken(t, rnd.Intn, qualityTargetCoder),
				Oscillation:          randomToken(t, rnd.Intn, oscillationCoder),
				AirQualityMonitoring: randomToken(t, rnd.Intn, airQualityCoder),
				FilterLifeHours:      rnd.Intn(10000),
				ErrorCode:            "NONE",
				NightMode:            randomToken(t, rnd.Intn, nightModeCoder),
				WarningCode:          "NONE",
				HeatMode:             randomToken(t, rnd.Intn, heatModeCoder),
				HeatTargetKelvin:     float64(2740+rnd.Intn(400)) / 10,
				HeatState:            randomToken(t, rnd.Intn, heatStateCoder),
				FanFocus:             randomToken(t, rnd.Intn, fanFocusCoder),
				Tilt:                 randomToken(t, rnd.Intn, tiltStateCoder),
			},
			Scheduler: Scheduler{ResetSchedule: "e854", DST: "0000", TimezoneID: "0001"},
		}
		b, err := EncodeMessage(expect)
		require.NoError(t, err)
		m, err := Decode(b)
		require.NoError(t, err, "wire=%s", b)
		require.Equal(t, expect, m, "wire=%s", b)
	}
}

func TestEncodeMessageOtherVariants(t *testing.T) {
	t.Parallel()

	for _, input := range []string{sampleHello, sampleSensor} {
		m, err := Decode([]byte(input))
		require.NoError(t, err)
		b, err := EncodeMessage(m)
		require.NoError(t, err)
		assert.JSONEq(t, input, string(b))
	}
}

func TestEncodeMessageInvalid(t *testing.T) {
	t.Parallel()

	m := sampleCurrentStateValue
	m.ProductState.FanSpeed = 0
	_, err := EncodeMessage(m)
	var fe *FieldError
	require.True(t, errors.As(err, &fe), "err=%v", err)
	assert.Equal(t, "product-state.fnsp", fe.Field)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestEncodeCommand(t *testing.T) {
	t.Parallel()

	ts := time.Date(2020, 6, 9, 14, 5, 4, 0, time.UTC)
	type Case struct {
		name   string
		cmd    Command
		expect string
	}
	cases := []Case{
		{"request-state", RequestCurrentState{Time: ts},
			`{"msg":"REQUEST-CURRENT-STATE","time":"2020-06-09T14:05:04.000Z"}`},
		{"request-sensor", RequestSensorData{Time: ts},
			`{"msg":"REQUEST-PRODUCT-ENVIRONMENT-CURRENT-SENSOR-DATA","time":"2020-06-09T14:05:04.000Z"}`},
		{"fan-speed", SetState{Time: ts, FanSpeed: 7},
			`{"msg":"STATE-SET","time":"2020-06-09T14:05:04.000Z","mode-reason":"LAPP","data":{"fnsp":"0007"}}`},
		{"heat", SetState{Time: ts, ModeReason: "RAPP", HeatMode: HeatModeOn, HeatTargetKelvin: 298.2},
			`{"msg":"STATE-SET","time":"2020-06-09T14:05:04.000Z","mode-reason":"RAPP","data":{"hmax":"2982","hmod":"HEAT"}}`},
		{"many", SetState{
			Time:                 ts,
			FanMode:              FanModeFan,
			FanSpeed:             FanSpeedAuto,
			QualityTarget:        QualityTargetNormal,
			Oscillation:          SwitchOn,
			AirQualityMonitoring: SwitchOff,
			NightMode:            SwitchOn,
			FanFocus:             FanFocusOn,
		}, `{"msg":"STATE-SET","time":"2020-06-09T14:05:04.000Z","mode-reason":"LAPP","data":{"ffoc":"On","fmod":"FAN","fnsp":"AUTO","nmod":"ON","oson":"ON","qtar":"0004","rhtm":"OFF"}}`},
	}
	helpers.Shuffle(cases)
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			b, err := Encode(c.cmd)
			require.NoError(t, err)
			assert.Equal(t, c.expect, string(b))
		})
	}
}

func TestEncodeCommandError(t *testing.T) {
	t.Parallel()

	ts := time.Now()
	type Case struct {
		name   string
		cmd    Command
		field  string
		expect error
	}
	cases := []Case{
		{"no-time", RequestCurrentState{}, "time", ErrMissingField},
		{"set-no-time", SetState{FanSpeed: 1}, "time", ErrMissingField},
		{"empty", SetState{Time: ts}, "data", ErrEmptyCommand},
		{"speed-range", SetState{Time: ts, FanSpeed: 11}, "data.fnsp", ErrOutOfRange},
		{"heat-range", SetState{Time: ts, HeatTargetKelvin: -5}, "data.hmax", ErrOutOfRange},
		{"switch-range", SetState{Time: ts, NightMode: 9}, "data.nmod", ErrOutOfRange},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			_, err := Encode(c.cmd)
			require.Error(t, err)
			var fe *FieldError
			require.True(t, errors.As(err, &fe), "err=%v", err)
			assert.Equal(t, c.field, fe.Field)
			assert.True(t, errors.Is(err, c.expect), "err=%v", err)
		})
	}
}

func TestFormatTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2020, 5, 19, 16, 53, 4, 123456789, time.FixedZone("X", 2*3600))
	s := FormatTime(ts)
	assert.Equal(t, "2020-05-19T14:53:04.123Z", s)
	back, err := ParseTime(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(ts.Truncate(time.Millisecond)))
}
