package acoder

import "github.com/uvic-aurora/edgebreaker-sub000/internal/bitio"

// MaxFrequency is the frequency cap M from spec §4.3: when a context's
// total (freq0+freq1) reaches this value, both counters are halved
// (minimum 1) before the increment that triggered the rescale.
const MaxFrequency = 1<<30 - 1

// context holds one adaptive binary probability model: two frequency
// counters, both initialized to 1 (equiprobable).
type context struct {
	freq0, freq1 uint32
	adaptive     bool
}

func newContext() context {
	return context{freq0: 1, freq1: 1, adaptive: true}
}

// update increments the count for the observed bit, rescaling first if the
// total has reached the cap.
func (c *context) update(bit int) {
	if !c.adaptive {
		return
	}
	if c.freq0+c.freq1 >= MaxFrequency {
		c.freq0 = (c.freq0 + 1) / 2
		c.freq1 = (c.freq1 + 1) / 2
	}
	if bit == 0 {
		c.freq0++
	} else {
		c.freq1++
	}
}

// Interval bounds for the 32-bit working interval used by renormalize,
// mirroring the teacher's range-coder renormalization loop
// (writer_bool.go/reader_bool.go) but driven by a frequency split instead
// of a probability byte.
const (
	topValue  = uint64(1) << 32
	halfValue = uint64(1) << 31
	q1Value   = halfValue / 2
	q3Value   = halfValue + q1Value
)

// Encoder is a binary range coder over K adaptive contexts plus an
// equiprobable bypass mode, matching spec §4.3.
//
// Structurally it follows the teacher's BoolWriter (low/range registers,
// carry propagation through a pending run, a Finish that flushes the
// minimum disambiguating tail) generalized from an 8-bit probability
// split to the spec's per-context frequency counters and 64-bit working
// precision.
type Encoder struct {
	w        *bitio.Writer
	contexts []context
	low       uint64
	rng       uint64
	pending   int // count of pending bits of unknown polarity (E3 underflow)
	started   bool
}

// NewEncoder creates an Encoder with numContexts adaptive contexts writing
// to w.
func NewEncoder(w *bitio.Writer, numContexts int) *Encoder {
	e := &Encoder{
		w:        w,
		contexts: make([]context, numContexts),
	}
	for i := range e.contexts {
		e.contexts[i] = newContext()
	}
	return e
}

// Start resets the coder's interval to [0, topValue).
func (e *Encoder) Start() {
	e.low = 0
	e.rng = topValue
	e.pending = 0
	e.started = true
}

func (e *Encoder) outputBit(bit int) {
	e.w.PutBits(uint32(bit), 1)
	for ; e.pending > 0; e.pending-- {
		e.w.PutBits(uint32(1-bit), 1)
	}
}

// renormalize shifts out determined high bits, handling the E3 (pending
// bits) underflow case exactly as a classic range coder.
func (e *Encoder) renormalize() {
	for {
		if e.low+e.rng <= halfValue {
			e.outputBit(0)
		} else if e.low >= halfValue {
			e.outputBit(1)
			e.low -= halfValue
		} else if e.low >= q1Value && e.low+e.rng <= q3Value {
			e.pending++
			e.low -= q1Value
		} else {
			break
		}
		e.low <<= 1
		e.rng <<= 1
	}
}

// EncodeRegular encodes bit using the adaptive model in context ctx.
func (e *Encoder) EncodeRegular(ctx int, bit int) {
	c := &e.contexts[ctx]
	total := uint64(c.freq0 + c.freq1)
	split := (e.rng * uint64(c.freq0)) / total
	if bit == 0 {
		e.rng = split
	} else {
		e.low += split
		e.rng -= split
	}
	c.update(bit)
	e.renormalize()
}

// EncodeBypass encodes bit with a fixed 50/50 split (used for sign bits
// and the binarizer's bypass tail).
func (e *Encoder) EncodeBypass(bit int) {
	if bit != 0 && bit != 1 {
		panic("acoder: EncodeBypass requires a binary input")
	}
	split := e.rng / 2
	if bit == 0 {
		e.rng = split
	} else {
		e.low += split
		e.rng -= split
	}
	e.renormalize()
}

// Terminate flushes the minimum number of bits needed to disambiguate the
// final interval, then 30 zero bits so that the decoder, which keeps a
// 32-bit code window filled, never reads past the end of the stream.
// Byte alignment is the caller's responsibility via the bit stream.
func (e *Encoder) Terminate() {
	e.pending++
	if e.low < q1Value {
		e.outputBit(0)
	} else {
		e.outputBit(1)
	}
	e.w.PutBits(0, 30)
}

// Decoder is the decoding counterpart of Encoder. Contexts must be driven
// with the identical sequence of (ctx, bit) calls the encoder made.
type Decoder struct {
	r        *bitio.Reader
	contexts []context
	low, rng uint64
	code     uint64
}

// NewDecoder creates a Decoder with numContexts adaptive contexts reading
// from r.
func NewDecoder(r *bitio.Reader, numContexts int) *Decoder {
	d := &Decoder{
		r:        r,
		contexts: make([]context, numContexts),
	}
	for i := range d.contexts {
		d.contexts[i] = newContext()
	}
	return d
}

// readBit returns the underlying stream's next bit, propagating
// bitio.ErrEOF instead of silently treating a truncated stream as zeros
// (spec §7's Eof kind covers exactly this: "underlying byte stream
// returned short on read").
func (d *Decoder) readBit() (uint64, error) {
	b, err := d.r.GetBits(1)
	if err != nil {
		return 0, err
	}
	return uint64(b), nil
}

// Start primes the decoder's code register with 32 bits (the coder's
// code size, fixed for this implementation).
func (d *Decoder) Start() error {
	d.low = 0
	d.rng = topValue
	d.code = 0
	for i := 0; i < 32; i++ {
		b, err := d.readBit()
		if err != nil {
			return err
		}
		d.code = (d.code << 1) | b
	}
	return nil
}

func (d *Decoder) renormalize() error {
	for {
		if d.low+d.rng <= halfValue {
			// no-op: MPS sub-range already below half
		} else if d.low >= halfValue {
			d.low -= halfValue
			d.code -= halfValue
		} else if d.low >= q1Value && d.low+d.rng <= q3Value {
			d.low -= q1Value
			d.code -= q1Value
		} else {
			break
		}
		d.low <<= 1
		d.rng <<= 1
		b, err := d.readBit()
		if err != nil {
			return err
		}
		d.code = (d.code << 1) | b
	}
	return nil
}

// DecodeRegular decodes one bit using the adaptive model in context ctx.
func (d *Decoder) DecodeRegular(ctx int) (int, error) {
	c := &d.contexts[ctx]
	total := uint64(c.freq0 + c.freq1)
	split := (d.rng * uint64(c.freq0)) / total
	var bit int
	if d.code-d.low < split {
		d.rng = split
		bit = 0
	} else {
		d.low += split
		d.rng -= split
		bit = 1
	}
	c.update(bit)
	if err := d.renormalize(); err != nil {
		return 0, err
	}
	return bit, nil
}

// DecodeBypass decodes one equiprobable bit.
func (d *Decoder) DecodeBypass() (int, error) {
	split := d.rng / 2
	var bit int
	if d.code-d.low < split {
		d.rng = split
		bit = 0
	} else {
		d.low += split
		d.rng -= split
		bit = 1
	}
	if err := d.renormalize(); err != nil {
		return 0, err
	}
	return bit, nil
}
