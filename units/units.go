// Package units converts temperatures reported by the device.
// Device protocol speaks Kelvin, humans speak Celsius.
package units

// AbsoluteZeroCelsius is 0K expressed in Celsius, negated.
const AbsoluteZeroCelsius = 273.15

// ToCelsius is exact subtraction, NaN and Inf pass through.
func ToCelsius(kelvin float64) float64 { return kelvin - AbsoluteZeroCelsius }

func ToKelvin(celsius float64) float64 { return celsius + AbsoluteZeroCelsius }
