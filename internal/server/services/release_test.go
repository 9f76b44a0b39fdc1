package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/postscript/internal/server/config"
	"github.com/dmitrijs2005/postscript/internal/server/models"
)

func newReleaseService(t *testing.T, rm *fakeRepoManager) *ReleaseService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "legacy-bundles",
	}
	return NewReleaseService(db, rm, cfg)
}

type fakeAssetsRepo struct {
	list    []*models.Asset
	listErr error

	linked map[string][]*models.Recipient
}

func (f *fakeAssetsRepo) Create(ctx context.Context, a *models.Asset) error { return nil }
func (f *fakeAssetsRepo) GetByID(ctx context.Context, id, userID string) (*models.Asset, error) {
	return nil, nil
}
func (f *fakeAssetsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Asset, error) {
	return f.list, f.listErr
}
func (f *fakeAssetsRepo) Update(ctx context.Context, a *models.Asset) error       { return nil }
func (f *fakeAssetsRepo) Delete(ctx context.Context, id, userID string) error     { return nil }
func (f *fakeAssetsRepo) LinkRecipients(context.Context, string, []string) error  { return nil }
func (f *fakeAssetsRepo) UnlinkRecipients(ctx context.Context, assetID string) error {
	return nil
}
func (f *fakeAssetsRepo) ListLinkedRecipients(ctx context.Context, assetID string) ([]*models.Recipient, error) {
	return f.linked[assetID], nil
}

func stubAWSSeams(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestUploadBundle_WritesEnvelopesAndPresigns(t *testing.T) {
	hint := "h"
	rm := &fakeRepoManager{
		a: &fakeAssetsRepo{
			list: []*models.Asset{
				{ID: "a1", UserID: "u1", Type: models.AssetTypeCrypto, Name: "wallet", EncryptedData: `{"v":1}`, EncryptedHint: &hint},
				{ID: "a2", UserID: "u1", Type: models.AssetTypeMessage, Name: "letter", EncryptedData: `{"v":1}`},
			},
			linked: map[string][]*models.Recipient{
				"a1": {{Email: "kin@example.com"}},
			},
		},
	}
	s := newReleaseService(t, rm)
	stubAWSSeams(t)

	var uploadedKey string
	var uploadedBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		if *in.Bucket != "legacy-bundles" {
			t.Errorf("bucket = %q", *in.Bucket)
		}
		uploadedKey = *in.Key
		body, err := io.ReadAll(in.Body)
		if err != nil {
			t.Fatalf("reading upload body: %v", err)
		}
		uploadedBody = body
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Key != uploadedKey {
			t.Errorf("presigned key %q does not match uploaded key %q", *in.Key, uploadedKey)
		}
		return &v4.PresignedHTTPRequest{URL: "https://s3.example.com/" + *in.Key}, nil
	}

	url, err := s.UploadBundle(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UploadBundle error: %v", err)
	}
	if !strings.HasPrefix(url, "https://s3.example.com/releases/u1/") {
		t.Errorf("unexpected url %q", url)
	}

	var b bundle
	if err := json.Unmarshal(uploadedBody, &b); err != nil {
		t.Fatalf("bundle is not valid JSON: %v", err)
	}
	if b.UserID != "u1" || len(b.Assets) != 2 {
		t.Fatalf("bundle = %+v", b)
	}
	if b.Assets[0].Envelope != `{"v":1}` {
		t.Errorf("bundle must carry the stored envelope untouched, got %q", b.Assets[0].Envelope)
	}
	if len(b.Assets[0].Recipients) != 1 || b.Assets[0].Recipients[0] != "kin@example.com" {
		t.Errorf("recipients = %v", b.Assets[0].Recipients)
	}
}

func TestUploadBundle_UploadErrorPropagates(t *testing.T) {
	rm := &fakeRepoManager{a: &fakeAssetsRepo{list: []*models.Asset{{ID: "a1"}}}}
	s := newReleaseService(t, rm)
	stubAWSSeams(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("put-fail")
	}

	if _, err := s.UploadBundle(context.Background(), "u1"); err == nil || !strings.Contains(err.Error(), "put-fail") {
		t.Fatalf("err = %v, want wrapped put-fail", err)
	}
}

func TestUploadBundle_ListErrorPropagates(t *testing.T) {
	rm := &fakeRepoManager{a: &fakeAssetsRepo{listErr: errors.New("db down")}}
	s := newReleaseService(t, rm)

	if _, err := s.UploadBundle(context.Background(), "u1"); err == nil {
		t.Fatal("expected error when asset listing fails")
	}
}
