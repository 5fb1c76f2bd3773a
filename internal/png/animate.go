package png

import (
	"bytes"
	"fmt"
	"math"

	"github.com/kettek/apng"
)

// MaxFrameDelay is the longest per-frame delay, in seconds, an APNG frame
// control chunk can carry at millisecond resolution.
const MaxFrameDelay = math.MaxUint16 / 1000.0

// CheckFrameDelay rejects delays that cannot be encoded.
func CheckFrameDelay(seconds float64) error {
	if !(seconds > 0 && seconds <= MaxFrameDelay) {
		return fmt.Errorf("%w: frame delay %vs must be in (0, %v]", ErrEncode, seconds, MaxFrameDelay)
	}
	return nil
}

// Animate stitches successive pipeline runs into a looping APNG, which is
// how repeated snowflake scatters read as falling snow.
func Animate(frames []*PixelBuffer, frameDelay float64) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames to animate", ErrEncode)
	}
	if err := CheckFrameDelay(frameDelay); err != nil {
		return nil, err
	}
	delay := uint16(math.Round(frameDelay * 1000))

	a := apng.APNG{
		Frames:    make([]apng.Frame, len(frames)),
		LoopCount: 0,
	}

	bounds := frames[0].Bounds
	for i, frame := range frames {
		if err := frame.Validate(); err != nil {
			return nil, fmt.Errorf("%w: frame %d: %w", ErrEncode, i, err)
		}
		if frame.Bounds.Size() != bounds.Size() {
			return nil, fmt.Errorf("%w: frame %d is %v, expected %v", ErrEncode, i, frame.Bounds.Size(), bounds.Size())
		}

		a.Frames[i] = apng.Frame{
			Image:            frame.Img,
			DelayNumerator:   delay,
			DelayDenominator: 1000,
		}
	}

	var buf bytes.Buffer
	if err := apng.Encode(&buf, a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return buf.Bytes(), nil
}
