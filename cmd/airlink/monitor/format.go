package monitor

import (
	"fmt"

	"github.com/temoto/airlink/protocol"
	"github.com/temoto/airlink/units"
)

// Format renders message as one log line, temperatures in Celsius.
func Format(m protocol.Message) string {
	switch x := m.(type) {
	case protocol.Hello:
		return fmt.Sprintf("hello model=%s version=%s", x.Model, x.Version)

	case protocol.CurrentState:
		p := x.ProductState
		return fmt.Sprintf("state fan=%s/%s speed=%s quality=%s oscillation=%s night=%s heat=%s/%s target=%.1fC focus=%s filter=%dh rssi=%d error=%s warning=%s",
			p.FanMode, p.FanState, p.FanSpeed, p.QualityTarget, p.Oscillation, p.NightMode,
			p.HeatMode, p.HeatState, units.ToCelsius(p.HeatTargetKelvin), p.FanFocus,
			p.FilterLifeHours, x.RSSI, p.ErrorCode, p.WarningCode)

	case protocol.SensorReading:
		v := x.Data.Values()
		return fmt.Sprintf("sensor temperature=%.1fC humidity=%.0f%% dust=%.0f voc=%.0f sleep_timer=%.0f",
			units.ToCelsius(v.TemperatureKelvin), v.HumidityPercentage, v.Dust, v.VolatileOrganicCompoundsPpm, v.SleepTimer)
	}
	return fmt.Sprintf("msg=%s", m.Kind())
}
