package cli

import (
	"context"
	"fmt"
)

// Login creates (or resumes) a session by email and caches the secret share
// for subsequent payload commands.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	session, err := a.client.CreateSession(ctx, email)
	if err != nil {
		return err
	}
	a.email = session.User.Email

	share, err := GetSecretShare(a.out)
	if err != nil {
		return err
	}
	a.client.SetShare(share)

	fmt.Fprintf(a.out, "Logged in as %s\n", session.User.Email)
	return nil
}

func (a *App) CheckIn(ctx context.Context) error {
	ts, err := a.client.CheckIn(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Checked in at %s\n", ts)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	s, err := a.client.HeartbeatStatus(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Status: %s\n", s.Status)
	fmt.Fprintf(a.out, "Last check-in: %s\n", s.LastHeartbeat)
	fmt.Fprintf(a.out, "Days remaining: %d\n", s.RemainingDays)
	fmt.Fprintf(a.out, "Next due: %s\n", s.NextDue)
	fmt.Fprintf(a.out, "Final deadline: %s\n", s.FinalDeadline)
	fmt.Fprintf(a.out, "Schedule: %s, grace %d days\n", s.Frequency, s.GracePeriodDays)
	return nil
}

func (a *App) UpdateConfig(ctx context.Context) error {
	freq, err := GetSimpleText(a.reader, "Frequency (daily/weekly/monthly, empty to keep)", a.out)
	if err != nil {
		return err
	}
	grace, err := GetSimpleText(a.reader, "Grace period days (7/14/30, empty to keep)", a.out)
	if err != nil {
		return err
	}

	var freqPtr *string
	if freq != "" {
		freqPtr = &freq
	}
	var gracePtr *int
	if grace != "" {
		var days int
		if _, err := fmt.Sscanf(grace, "%d", &days); err != nil {
			return fmt.Errorf("invalid grace period: %q", grace)
		}
		gracePtr = &days
	}

	cfg, err := a.client.UpdateHeartbeatConfig(ctx, freqPtr, gracePtr)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Schedule updated: %s, grace %d days\n", cfg.Frequency, cfg.GracePeriodDays)
	return nil
}

func (a *App) AddAsset(ctx context.Context) error {
	assetType, err := GetSimpleText(a.reader, "Type (crypto/transfer/message)", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	data, err := GetSimpleText(a.reader, "Content", a.out)
	if err != nil {
		return err
	}

	asset, err := a.client.CreateAsset(ctx, assetType, name, data, nil, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created asset %s (%s)\n", asset.ID, asset.Name)
	return nil
}

func (a *App) ListAssets(ctx context.Context) error {
	list, err := a.client.ListAssets(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No assets")
		return nil
	}
	for _, item := range list {
		fmt.Fprintf(a.out, "%s  %-8s  %s\n", item.ID, item.Type, item.Name)
	}
	return nil
}

func (a *App) ShowAsset(ctx context.Context, id string) error {
	if id == "" {
		var err error
		id, err = GetSimpleText(a.reader, "Asset id", a.out)
		if err != nil {
			return err
		}
	}

	asset, err := a.client.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Name: %s\nType: %s\nContent: %s\n", asset.Name, asset.Type, asset.Data)
	if asset.Hint != nil {
		fmt.Fprintf(a.out, "Hint: %s\n", *asset.Hint)
	}
	return nil
}

func (a *App) ListRecipients(ctx context.Context) error {
	list, err := a.client.ListRecipients(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No recipients")
		return nil
	}
	for _, r := range list {
		fmt.Fprintf(a.out, "%s  %s <%s>\n", r.ID, r.Name, r.Email)
	}
	return nil
}

func (a *App) AddRecipient(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	r, err := a.client.CreateRecipient(ctx, name, email, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added recipient %s\n", r.ID)
	return nil
}
