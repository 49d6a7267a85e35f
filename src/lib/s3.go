package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func GetS3Client() *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	svc := s3.NewFromConfig(cfg)
	return svc
}

// S3PresignProofUpload returns a pair of URLs for a payment-proof image: a
// short-lived PUT URL the client uploads to, and the durable GET URL stored
// on the transaction row.
func S3PresignProofUpload(key string, contentType string) (uploadURL string, publicURL string, err error) {
	proofsBucket := os.Getenv("S3_PROOFS_BUCKET")
	client := GetS3Client()
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignPutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(proofsBucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(po *s3.PresignOptions) {
		po.Expires = time.Duration(900 * time.Second)
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return "", "", err
	}
	region := os.Getenv("AWS_REGION")
	publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", proofsBucket, region, key)
	return r.URL, publicURL, nil
}

func S3DeleteAsset(key string) error {
	proofsBucket := os.Getenv("S3_PROOFS_BUCKET")
	client := GetS3Client()
	_, err := client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(proofsBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Printf("Could not delete object [%s]: %s\n", key, err.Error())
		return err
	}
	return nil
}
