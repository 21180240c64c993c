package exif_scanner

import (
	"math"
	"strconv"
)

// ReadableFileSize
// accepts the file size (number of bytes in float64)
// returns string as a readable format {"B","KB", "MB", "GB", "TB"}
func ReadableFileSize(size float64) string {
	var suffixes = [5]string{"B", "KB", "MB", "GB", "TB"}
	if size < 1 {
		return "0 B"
	}
	index := 0
	for size >= 1024 && index < len(suffixes)-1 {
		size /= 1024
		index++
	}
	return strconv.FormatFloat(Round(size, .5, 2), 'f', -1, 64) + " " + suffixes[index]
}

func Round(val float64, roundOn float64, places int) (newVal float64) {
	var round float64
	pow := math.Pow(10, float64(places))
	digit := pow * val
	_, div := math.Modf(digit)
	if div >= roundOn {
		round = math.Ceil(digit)
	} else {
		round = math.Floor(digit)
	}
	newVal = round / pow
	return
}
