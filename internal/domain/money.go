package domain

import "fmt"

// Money is a monetary amount in minor currency units (centimes).
// All internal arithmetic happens on Money; conversion to and from euros is
// only allowed at system boundaries (display, payment gateway).
type Money int64

// MoneyFromEuros converts a euro amount to Money. Boundary use only.
func MoneyFromEuros(euros float64) Money {
	if euros >= 0 {
		return Money(euros*100 + 0.5)
	}
	return Money(euros*100 - 0.5)
}

// Euros converts Money to a euro amount. Boundary use only.
func (m Money) Euros() float64 {
	return float64(m) / 100
}

// Cents returns the amount in minor units, as expected by the payment gateway.
func (m Money) Cents() int64 {
	return int64(m)
}

// Percent applies a percentage to the amount, rounding half away from zero.
func (m Money) Percent(pct float64) Money {
	v := float64(m) * pct / 100
	if v >= 0 {
		return Money(v + 0.5)
	}
	return Money(v - 0.5)
}

func (m Money) String() string {
	sign := ""
	v := m
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d EUR", sign, v/100, v%100)
}
