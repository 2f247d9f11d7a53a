// Package timecode converts between broadcast timecode labels
// (HH:MM:SS:FF, or HH;MM;SS;FF for drop-frame) and absolute frame counts.
//
// A Framerate is built from one of three input shapes:
//
//	Standard("29.97DF")                                    // named standard rate
//	Fraction{Numerator: 30000, Denominator: 1001, Drop: true} // exact fraction
//	Decimal(29.97)                                         // floating point
//
// and normalized into a base (counting) rate, a nominal rate, a drop-frame
// flag and an exact fraction. A Timecode holds a frame count at a Framerate:
//
//	rate, _ := timecode.NewFramerate(timecode.Decimal(29.97))
//	tc, _ := timecode.Parse("01:59:59:28", rate)
//	tc.String() // "01;59;59;28"
//
// Drop-frame counting skips the first two labels (four at 59.94) of every
// minute except each tenth minute, so those labels fail to parse.
//
// Framerate values are immutable and safe to share. A Timecode is a
// mutable value and must not be mutated concurrently.
package timecode
