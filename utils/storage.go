package utils

import "mime/multipart"

// FileStorage abstrae el almacén de blobs. Upload devuelve la URL pública
// del objeto; Delete la recibe de vuelta. Los tests sustituyen Storage
// por una implementación en memoria.
type FileStorage interface {
	Upload(fileHeader *multipart.FileHeader, fileID string) (string, error)
	Delete(publicURL string) error
}

var Storage FileStorage = &SupabaseStorage{}
