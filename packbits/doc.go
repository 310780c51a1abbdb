/*

Package packbits implements Apple's PackBits byte-oriented run-length codec, as used inside QuickDraw PICT
DirectBitsRect pixel data.

A PackBits stream is a sequence of runs, each starting with a signed control byte n:

  - 0..127: a literal run; the following n+1 bytes are emitted verbatim.
  - -1..-127: a repeat run; the following single byte is emitted -n+1 times (2..128 repetitions).
  - -128: a no-op, skipped.

Both Encoder and Decoder are streaming state machines: input may arrive in arbitrarily small chunks across
multiple calls, and no control byte is ever reinterpreted across a call boundary.

This package only implements the 8-bit variant described above; PackBits' less common 16-bit variant is not
supported.

*/
package packbits
