package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Decode parses one device message.
// Input that is not a UTF-8 JSON object wraps ErrMalformed.
// Unknown "msg" value returns *UnrecognizedKindError.
// Any bad field returns *FieldError wrapping ErrMissingField, ErrMistypedField,
// *UnknownEnumTokenError or *NumericParseError.
func Decode(b []byte) (Message, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("protocol: %w: payload is not UTF-8", ErrMalformed)
	}
	root, err := newFieldReader("", "", b)
	if err != nil {
		return nil, err
	}
	kind := Kind(root.text("msg"))
	if root.err != nil {
		return nil, root.err
	}
	root.kind = kind

	switch kind {
	case KindHello:
		return decodeHello(root)
	case KindCurrentState:
		return decodeCurrentState(root)
	case KindEnvironmentalSensorData:
		return decodeSensorReading(root)
	default:
		return nil, &UnrecognizedKindError{Kind: kind}
	}
}

func decodeHello(r *fieldReader) (Message, error) {
	m := Hello{
		Time:              r.text("time"),
		Model:             r.text("model"),
		Version:           r.text("version"),
		Protocol:          r.text("protocol"),
		SerialNumber:      r.text("serialNumber"),
		MACAddress:        r.text("mac address"),
		ModuleHardware:    r.text("module hardware"),
		ModuleBootloader:  r.text("module bootloader"),
		ModuleSoftware:    r.text("module software"),
		ModuleNWP:         r.text("module nwp"),
		ProductHardware:   r.text("product hardware"),
		ProductBootloader: r.text("product bootloader"),
		ProductSoftware:   r.text("product software"),
		ResetSource:       r.text("reset-source"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func decodeCurrentState(r *fieldReader) (Message, error) {
	m := CurrentState{
		Time:        r.text("time"),
		ModeReason:  r.text("mode-reason"),
		StateReason: r.text("state-reason"),
		Dial:        r.text("dial"),
		RSSI:        r.decimal(rssiCoder),
	}

	ps := r.object("product-state")
	m.ProductState = ProductState{
		FanMode:              enumField(ps, fanModeCoder),
		FanState:             enumField(ps, fanStateCoder),
		FanSpeed:             enumField(ps, fanSpeedCoder),
		QualityTarget:        enumField(ps, qualityTargetCoder),
		Oscillation:          enumField(ps, oscillationCoder),
		AirQualityMonitoring: enumField(ps, airQualityCoder),
		FilterLifeHours:      ps.decimal(filterLifeCoder),
		ErrorCode:            ps.text(errorCodeCoder.Field()),
		NightMode:            enumField(ps, nightModeCoder),
		WarningCode:          ps.text(warningCodeCoder.Field()),
		HeatMode:             enumField(ps, heatModeCoder),
		HeatTargetKelvin:     ps.scaled(heatTargetCoder),
		HeatState:            enumField(ps, heatStateCoder),
		FanFocus:             enumField(ps, fanFocusCoder),
		Tilt:                 enumField(ps, tiltStateCoder),
	}
	if ps.err != nil {
		return nil, ps.err
	}

	sc := r.object("scheduler")
	m.Scheduler = Scheduler{
		ResetSchedule: sc.text(scheduleResetCoder.Field()),
		DST:           sc.text(scheduleDSTCoder.Field()),
		TimezoneID:    sc.text(scheduleTimezoneCoder.Field()),
	}
	if sc.err != nil {
		return nil, sc.err
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func decodeSensorReading(r *fieldReader) (Message, error) {
	m := SensorReading{Time: r.text("time")}
	d := r.object("data")
	m.Data = SensorDataRaw{
		Temperature: d.text("tact"),
		Humidity:    d.text("hact"),
		Dust:        d.text("pact"),
		VOC:         d.text("vact"),
		SleepTimer:  d.text("sltm"),
	}
	if d.err != nil {
		return nil, d.err
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// fieldReader reads one JSON object field by field.
// First failure sticks in err, later reads return zero values.
type fieldReader struct {
	kind Kind
	path string
	m    map[string]json.RawMessage
	err  error
}

func newFieldReader(kind Kind, path string, b []byte) (*fieldReader, error) {
	r := &fieldReader{kind: kind, path: path}
	if err := json.Unmarshal(b, &r.m); err != nil || r.m == nil {
		if path == "" {
			if err == nil {
				err = fmt.Errorf("null")
			}
			return nil, fmt.Errorf("protocol: %w: %v", ErrMalformed, err)
		}
		return nil, &FieldError{Kind: kind, Field: path, Err: ErrMistypedField}
	}
	return r, nil
}

func (r *fieldReader) fail(name string, err error) {
	if r.err == nil {
		r.err = &FieldError{Kind: r.kind, Field: r.path + name, Err: err}
	}
}

func (r *fieldReader) text(name string) string {
	if r.err != nil {
		return ""
	}
	raw, ok := r.m[name]
	if !ok {
		r.fail(name, ErrMissingField)
		return ""
	}
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		r.fail(name, ErrMistypedField)
		return ""
	}
	return s
}

// object returns nested reader, on failure the error sticks in both.
func (r *fieldReader) object(name string) *fieldReader {
	sub := &fieldReader{kind: r.kind, path: r.path + name + "."}
	if r.err != nil {
		sub.err = r.err
		return sub
	}
	raw, ok := r.m[name]
	if !ok {
		r.fail(name, ErrMissingField)
		sub.err = r.err
		return sub
	}
	nested, err := newFieldReader(r.kind, r.path+name, raw)
	if err != nil {
		r.err = err
		sub.err = err
		return sub
	}
	nested.path = r.path + name + "."
	return nested
}

func (r *fieldReader) decimal(c *decimalCoder) int {
	s := r.text(c.field)
	if r.err != nil {
		return 0
	}
	v, err := c.Decode(s)
	if err != nil {
		r.fail(c.field, err)
	}
	return v
}

func (r *fieldReader) scaled(c *scaledCoder) float64 {
	s := r.text(c.field)
	if r.err != nil {
		return 0
	}
	v, err := c.Decode(s)
	if err != nil {
		r.fail(c.field, err)
	}
	return v
}

func enumField[T ~uint8](r *fieldReader, c *enumCoder[T]) T {
	var zero T
	s := r.text(c.field)
	if r.err != nil {
		return zero
	}
	v, err := c.Decode(s)
	if err != nil {
		r.fail(c.field, err)
		return zero
	}
	return v
}
