package bbo

// validate checks structural invariants over a decoded record and returns
// advisory warnings. No check is fatal: a structurally valid 48-byte frame
// always yields a usable Packet, since the engine has no ground truth about
// valid ranges for the market quantities themselves.
func validate(p *Packet) []Warning {
	var warnings []Warning

	if p.Padding != PaddingSentinel {
		warnings = append(warnings, Warning{Kind: WarnBadSentinel, Value: uint64(p.Padding)})
	}

	// Symbol bytes should be printable ASCII or zero padding. Anything else
	// suggests upstream corruption; the display layer substitutes '.' so this
	// is the structured counterpart of that diagnostic.
	for i, c := range p.Symbol {
		if c != 0 && (c < 0x20 || c > 0x7E) {
			warnings = append(warnings, Warning{Kind: WarnNonPrintableSymbol, Value: uint64(i)})
			break
		}
	}

	return warnings
}
