// Package backup copies locally stored reports to Google Drive.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	DefaultFolderName = "fitassist-reports-backup"

	folderMimeType = "application/vnd.google-apps.folder"
	pdfMimeType    = "application/pdf"
)

type reportsLister interface {
	Dir() string
	List() ([]string, error)
}

type DriveBackup struct {
	service  *drive.Service
	folderID string
}

func NewDriveBackup(ctx context.Context, folderName string, opts ...option.ClientOption) (*DriveBackup, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	b := &DriveBackup{service: driveService}
	folderID, err := b.findFolder(ctx, folderName)
	if err != nil {
		return nil, err
	}
	if folderID == "" {
		log.Printf("backups folder %s not found, creating it", folderName)
		if folderID, err = b.createFolder(ctx, folderName); err != nil {
			return nil, fmt.Errorf("create backups folder: %w", err)
		}
	}
	b.folderID = folderID
	log.Debugf("backups folder ID: %s", folderID)

	return b, nil
}

// Sync uploads the reports not yet present in the backups folder and
// returns how many were uploaded.
func (b *DriveBackup) Sync(ctx context.Context, reports reportsLister) (int, error) {
	local, err := reports.List()
	if err != nil {
		return 0, err
	}

	remote, err := b.remoteNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list backed up reports: %w", err)
	}

	uploaded := 0
	for _, name := range local {
		if remote[name] {
			continue
		}
		if err := b.upload(ctx, filepath.Join(reports.Dir(), name), name); err != nil {
			return uploaded, fmt.Errorf("upload %s: %w", name, err)
		}
		log.Printf("report backed up: %s", name)
		uploaded++
	}

	return uploaded, nil
}

func (b *DriveBackup) findFolder(ctx context.Context, folderName string) (string, error) {
	query := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, folderName)
	folders, err := b.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve files: %w", err)
	}
	if len(folders.Files) == 0 {
		return "", nil
	}
	if len(folders.Files) > 1 {
		log.Warnf("found %d backups folders named %s, will take the first one", len(folders.Files), folderName)
	}
	return folders.Files[0].Id, nil
}

func (b *DriveBackup) createFolder(ctx context.Context, folderName string) (string, error) {
	folder, err := b.service.Files.
		Create(&drive.File{Name: folderName, MimeType: folderMimeType}).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}

func (b *DriveBackup) remoteNames(ctx context.Context) (map[string]bool, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", b.folderID, folderMimeType)
	names := make(map[string]bool)
	err := b.service.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				names[f.Name] = true
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (b *DriveBackup) upload(ctx context.Context, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = b.service.Files.
		Create(&drive.File{Name: name, MimeType: pdfMimeType, Parents: []string{b.folderID}}).
		Fields("id").
		Media(f).
		Context(ctx).
		Do()
	return err
}
