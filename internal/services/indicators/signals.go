package indicators

// RsiLabel maps an RSI value onto its momentum band.
func RsiLabel(rsi float64) string {
	switch {
	case rsi > 70:
		return "Overbought"
	case rsi < 30:
		return "Oversold"
	case rsi >= 50:
		return "Strong Momentum"
	default:
		return "Weak Momentum"
	}
}

// MacdLabel interprets the line/signal relationship and histogram sign.
// Line above signal with a positive histogram is an established trend; a
// negative histogram there means the crossover is recent. Both line and
// signal on the same side of zero without a crossover is a zone reading.
func MacdLabel(line, signal, histogram float64) string {
	switch {
	case line > signal:
		if histogram > 0 {
			return "Bullish Trend"
		}
		return "Bullish Crossover"
	case line < signal:
		if histogram < 0 {
			return "Bearish Trend"
		}
		return "Bearish Crossover"
	case line > 0 && signal > 0:
		return "Bullish Zone"
	case line < 0 && signal < 0:
		return "Bearish Zone"
	default:
		return "Neutral"
	}
}

// BollingerLabel positions the latest price against the outer bands.
func BollingerLabel(latest, upper, lower float64) string {
	switch {
	case latest > upper:
		return "Upper Band Breakout (Bullish)"
	case latest < lower:
		return "Lower Band Bounce (Bearish)"
	default:
		return "Within Bands (Neutral)"
	}
}
