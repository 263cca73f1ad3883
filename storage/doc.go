// Package storage reads source files through pluggable backends.
//
// Backends register themselves with RegisterFactory from an init function;
// import the ones you need:
//
//   - storage/local: local filesystem (default)
//   - storage/s3: Amazon S3 and S3-compatible services
//
// # Configuration
//
//	storage:
//	  provider: "s3"
//	  bucket: "incoming"
//	  region: "eu-west-1"
//	  max_file_size: "50MB"
package storage
