package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assignment-hub/internal/dto"
)

func newStudentFixture() (StudentService, *fakeStudentStore) {
	store := newFakeStudentStore(sampleStudent())
	return NewStudentService(store, validator.New(), testLogger()), store
}

func TestStudentServiceCreateScrubsProfile(t *testing.T) {
	svc, store := newStudentFixture()

	created, err := svc.Create(context.Background(), parent(), dto.StudentCreateRequest{
		ParentID:   99,
		FirstName:  "  <b>Grace</b> ",
		Grade:      "2nd Grade",
		Email:      "Grace@Example.com",
		Strengths:  []string{"Reading", "reading", " Drawing "},
		Weaknesses: []string{"<i>Fractions</i>"},
	})
	require.NoError(t, err)

	require.Equal(t, uint(7), created.ParentID, "parents always own the profiles they create")
	require.Equal(t, "Grace", created.FirstName)
	require.Equal(t, "grace@example.com", created.Email)
	require.Equal(t, []string{"Reading", "Drawing"}, created.Strengths)
	require.Equal(t, []string{"Fractions"}, created.Weaknesses)
	require.Equal(t, []string{}, created.LearningStyles)

	stored, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "2nd Grade", stored.Grade)
}

func TestStudentServiceCreateRules(t *testing.T) {
	svc, _ := newStudentFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, learner(), dto.StudentCreateRequest{FirstName: "Me", Grade: "1st Grade"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, Actor{ID: 1, Role: RoleAdmin}, dto.StudentCreateRequest{FirstName: "Kid", Grade: "1st Grade"})
	require.ErrorIs(t, err, ErrInvalidInput)

	created, err := svc.Create(ctx, Actor{ID: 1, Role: RoleAdmin}, dto.StudentCreateRequest{ParentID: 8, FirstName: "Kid", Grade: "1st Grade"})
	require.NoError(t, err)
	require.Equal(t, uint(8), created.ParentID)

	_, err = svc.Create(ctx, parent(), dto.StudentCreateRequest{FirstName: "<script></script>", Grade: "1st Grade"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, parent(), dto.StudentCreateRequest{FirstName: "Kid"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestStudentServiceAccess(t *testing.T) {
	svc, _ := newStudentFixture()
	ctx := context.Background()

	own, err := svc.Get(ctx, learner(), 11)
	require.NoError(t, err)
	require.Equal(t, "Ada", own.FirstName)

	_, err = svc.Get(ctx, Actor{ID: 8, Role: RoleParent}, 11)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, parent(), 404)
	require.ErrorIs(t, err, ErrStudentNotFound)

	_, err = svc.List(ctx, learner(), dto.StudentListRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	listed, err := svc.List(ctx, parent(), dto.StudentListRequest{})
	require.NoError(t, err)
	require.Len(t, listed.Items, 1)
	require.Equal(t, 1, listed.Pagination.TotalPages)

	other, err := svc.List(ctx, Actor{ID: 8, Role: RoleParent}, dto.StudentListRequest{})
	require.NoError(t, err)
	require.Empty(t, other.Items)
}

func TestStudentServiceUpdateAndDelete(t *testing.T) {
	svc, store := newStudentFixture()
	ctx := context.Background()

	grade := "6th Grade"
	updated, err := svc.Update(ctx, parent(), 11, dto.StudentUpdateRequest{
		Grade:          &grade,
		LearningStyles: []string{"Hands-on"},
	})
	require.NoError(t, err)
	require.Equal(t, "6th Grade", updated.Grade)
	require.Equal(t, []string{"Hands-on"}, updated.LearningStyles)
	require.Equal(t, []string{"Arithmetic"}, updated.Strengths)

	_, err = svc.Update(ctx, learner(), 11, dto.StudentUpdateRequest{Grade: &grade})
	require.ErrorIs(t, err, ErrForbidden)

	blank := "   "
	_, err = svc.Update(ctx, parent(), 11, dto.StudentUpdateRequest{FirstName: &blank})
	require.ErrorIs(t, err, ErrInvalidInput)

	require.ErrorIs(t, svc.Delete(ctx, Actor{ID: 8, Role: RoleParent}, 11), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, parent(), 11))
	_, err = store.GetByID(ctx, 11)
	require.Error(t, err)
	require.ErrorIs(t, svc.Delete(ctx, parent(), 11), ErrStudentNotFound)
}
