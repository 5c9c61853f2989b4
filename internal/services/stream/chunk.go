package stream

// Boundary separates the parts of the multipart video feed.
const Boundary = "frame"

// ContentType is the response type of the video feed.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

const (
	partHeader  = "--" + Boundary + "\r\nContent-Type: image/jpeg\r\n\r\n"
	partTrailer = "\r\n"
)

// FrameChunk wraps an encoded JPEG into one self-delimited multipart part.
func FrameChunk(jpeg []byte) []byte {
	chunk := make([]byte, 0, len(partHeader)+len(jpeg)+len(partTrailer))
	chunk = append(chunk, partHeader...)
	chunk = append(chunk, jpeg...)
	chunk = append(chunk, partTrailer...)
	return chunk
}
