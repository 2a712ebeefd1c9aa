package domain

// MaxMultipartParts is the part limit of S3 compatible multipart uploads
const MaxMultipartParts = 10000

// NextRange returns the half-open byte range [start, end) of the part that
// begins at offset. It must not be called once offset has reached size.
func NextRange(offset, size, chunkSize int64) (int64, int64) {
	end := offset + chunkSize
	if end > size {
		end = size
	}
	return offset, end
}

// PartCount is the number of parts needed to send size bytes
func PartCount(size, chunkSize int64) int {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	return int((size + chunkSize - 1) / chunkSize)
}
