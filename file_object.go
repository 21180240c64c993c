package exif_scanner

import "path"

// FileObject is one fetched object held in memory for parsing.
type FileObject struct {
	objectKey string
	fileSize  int64
	byteData  []byte
}

func NewFileObject(objectKey string, byteData []byte) *FileObject {
	return &FileObject{
		objectKey: objectKey,
		fileSize:  int64(len(byteData)),
		byteData:  byteData,
	}
}

func (fileObj *FileObject) ObjectKey() string {
	return fileObj.objectKey
}

// Extension returns the key's extension including the dot, e.g. ".jpg".
func (fileObj *FileObject) Extension() string {
	return path.Ext(fileObj.objectKey)
}

func (fileObj *FileObject) FileSize() int64 {
	return fileObj.fileSize
}

func (fileObj *FileObject) ReadableFileSize() string {
	return ReadableFileSize(float64(fileObj.fileSize))
}

func (fileObj *FileObject) FileDataAsByte() []byte {
	return fileObj.byteData
}
