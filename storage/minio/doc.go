// Package minio provides a MinIO implementation of the storage.Storage
// interface for self-hosted and S3-compatible object stores.
//
// # Usage
//
//	client, err := minio.New("minio.internal:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
//	    Secure: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	store := miniostorage.New(client, "chromad",
//	    miniostorage.WithPrefix("segments/"),
//	)
//
// Downloads go through the client's temp-file materialization, so a
// crash mid-transfer never leaves a torn file at the destination.
package minio
