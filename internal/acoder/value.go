package acoder

// EncodeValue binarizes value (an n-bit unsigned magnitude) through a
// fresh Selector(n, f) and feeds each bit to enc, adding ctxBase to every
// regular context id. ctxBase lets independent value streams (e.g. one
// per coordinate axis) share a single Encoder's context bank without
// colliding (spec §6.1's per-axis context offset).
func EncodeValue(enc *Encoder, n, f, ctxBase int, value uint32) {
	sel := NewSelector(n, f)
	for i := n - 1; i >= 0; i-- {
		bit := int((value >> uint(i)) & 1)
		if ctx := sel.Context(); ctx < 0 {
			enc.EncodeBypass(bit)
		} else {
			enc.EncodeRegular(ctxBase+ctx, bit)
		}
		sel.FeedBit(bit)
	}
}

// DecodeValue is EncodeValue's inverse.
func DecodeValue(dec *Decoder, n, f, ctxBase int) (uint32, error) {
	sel := NewSelector(n, f)
	var value uint32
	for i := n - 1; i >= 0; i-- {
		var bit int
		var err error
		if ctx := sel.Context(); ctx < 0 {
			bit, err = dec.DecodeBypass()
		} else {
			bit, err = dec.DecodeRegular(ctxBase + ctx)
		}
		if err != nil {
			return 0, err
		}
		value = (value << 1) | uint32(bit)
		sel.FeedBit(bit)
	}
	return value, nil
}
