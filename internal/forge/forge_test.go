package forge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/altinukshini/grit/internal/model"
)

func TestErrorKinds(t *testing.T) {
	if err := AuthError("no token"); !IsKind(err, KindAuth) {
		t.Errorf("AuthError kind: %v", err)
	}
	if err := IoError(errors.New("disk full")); !IsKind(err, KindIo) {
		t.Errorf("IoError kind: %v", err)
	}
	if err := apiErrorf("bad response"); !IsKind(err, KindApi) {
		t.Errorf("apiErrorf kind: %v", err)
	}
	if ApiError(nil) != nil {
		t.Error("ApiError(nil) should be nil")
	}
}

func TestErrorWrapping(t *testing.T) {
	inner := errors.New("connection refused")
	err := ApiError(fmt.Errorf("fetching prs: %w", inner))
	if !errors.Is(err, inner) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
}

func TestUnsupportedDefaults(t *testing.T) {
	var u Unsupported
	ctx := context.Background()

	if reqs, err := u.ListReviewRequests(ctx, "me"); err != nil || reqs != nil {
		t.Errorf("ListReviewRequests = %v, %v", reqs, err)
	}
	if prs, err := u.ListMyPrs(ctx, "me"); err != nil || prs != nil {
		t.Errorf("ListMyPrs = %v, %v", prs, err)
	}
	if runs, err := u.ListActionRuns(ctx, "o", "r", 1); err != nil || len(runs.Items) != 0 {
		t.Errorf("ListActionRuns = %v, %v", runs, err)
	}
	if status, err := u.GetCheckStatus(ctx, "o", "r", 1); err != nil || status != model.ChecksNone {
		t.Errorf("GetCheckStatus = %v, %v", status, err)
	}

	err := u.SubmitReview(ctx, "o", "r", 1, model.ReviewApprove, "lgtm")
	if !IsKind(err, KindApi) {
		t.Errorf("SubmitReview should fail with an api error, got %v", err)
	}
}
