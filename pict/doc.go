/*

Package pict decodes QuickDraw PICT images as embedded in Mohawk PICT resources: the 512-byte null
header, the VersionOp/Version/HeaderOp preamble, the opcode stream, and the DirectBitsRect/
CompressedQuickTime image payloads. Drawing opcodes that don't carry image data (clips, fonts, pens,
text) are parsed for alignment and discarded, matching the source format's own scope: this package
never renders anything, it only recovers the one image a PICT resource carries.

Information sources:

- QuickDraw PICT file format: https://www.fileformat.info/format/macpict/egff.htm

- Inside Macintosh: QuickDraw, opcode reference: https://preterhuman.net/macstuff/insidemac/QuickDraw/QuickDraw-458.html

*/
package pict
