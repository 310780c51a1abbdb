/*

Package mohawk is a reader for Mohawk archive files, the IFF-based container format used by Broderbund/Cyan's
Myst and its siblings.

A Mohawk archive is a nested table of tables: an IFF header points at an RSRC header, which points at a
resource directory holding a type table; each type points at its own resource table (ResourceID -> FileID)
and name table (ResourceID -> name offset); a single file table at the top holds the actual byte ranges. Open
walks this chain once and returns a read-only catalogue of Resource values, each bound to an independently
seekable view of the archive.

Two resource types get first-class treatment: MSND (raw audio, streamed byte-for-byte) and PICT (QuickDraw
pictures, decoded by the sibling pict package into either a JPEG byte string or an RGB24 pixel buffer). Any
other type tag is still catalogued, just not interpreted.

Information sources:

- Mohawk archive format: http://insidethelink.ortiche.net/wiki/index.php/Mohawk_archive_format

- ScummVM's Mohawk engine: https://github.com/scummvm/scummvm/tree/master/engines/mohawk

*/
package mohawk
