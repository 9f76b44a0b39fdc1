package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/postscript/internal/server/config"
	"github.com/dmitrijs2005/postscript/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// bundleLinkValidity bounds how long a presigned bundle link stays usable.
const bundleLinkValidity = 7 * 24 * time.Hour

// ReleaseService assembles a delivered user's assets into a bundle object in
// S3-compatible storage and hands back a presigned download link. The bundle
// contains envelope strings only; without the caller share the contents stay
// opaque to everyone holding the link.
type ReleaseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewReleaseService(db *sql.DB, rm repomanager.RepositoryManager, config *sc.Config) *ReleaseService {
	return &ReleaseService{db: db, repomanager: rm, config: config}
}

// bundleAsset is the per-asset shape written into the bundle JSON.
type bundleAsset struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Name       string   `json:"name"`
	Envelope   string   `json:"envelope"`
	Recipients []string `json:"recipients,omitempty"`
}

type bundle struct {
	UserID      string        `json:"userId"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Assets      []bundleAsset `json:"assets"`
}

func (s *ReleaseService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	}), nil
}

func bundleStorageKey(userID string, now time.Time) string {
	return fmt.Sprintf("releases/%s/%s.json", userID, now.UTC().Format("20060102T150405Z"))
}

// UploadBundle gathers the user's assets, uploads them as one JSON object,
// and returns a presigned GET link for recipients.
func (s *ReleaseService) UploadBundle(ctx context.Context, userID string) (string, error) {
	assetsRepo := s.repomanager.Assets(s.db)

	list, err := assetsRepo.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	b := bundle{UserID: userID, GeneratedAt: time.Now().UTC()}
	for _, a := range list {
		ba := bundleAsset{
			ID:       a.ID,
			Type:     string(a.Type),
			Name:     a.Name,
			Envelope: a.EncryptedData,
		}
		linked, err := assetsRepo.ListLinkedRecipients(ctx, a.ID)
		if err != nil {
			return "", err
		}
		for _, r := range linked {
			ba.Recipients = append(ba.Recipients, r.Email)
		}
		b.Assets = append(b.Assets, ba)
	}

	body, err := json.Marshal(b)
	if err != nil {
		return "", err
	}

	client, err := s.getS3Client()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := bundleStorageKey(userID, b.GeneratedAt)
	contentType := "application/json"

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("bundle upload: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(bundleLinkValidity))
	if err != nil {
		return "", fmt.Errorf("bundle presign: %w", err)
	}

	return req.URL, nil
}
