package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hiremind/backend/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestSQLiteUsers(t *testing.T) {
	Convey("Given an empty sqlite store", t, func() {
		s := openTestStore(t)
		ctx := context.Background()

		user := &models.User{Name: "Jane Doe", Email: "jane@example.com", Password: "hash", Provider: models.ProviderEmail}
		So(s.CreateUser(ctx, user), ShouldBeNil)

		Convey("Then the created user gets an ID and timestamps", func() {
			So(user.ID, ShouldNotBeEmpty)
			So(user.CreatedAt.IsZero(), ShouldBeFalse)
			So(user.HasGeminiAPIKey, ShouldBeFalse)
		})

		Convey("When creating a second user with the same email", func() {
			err := s.CreateUser(ctx, &models.User{Name: "Other", Email: "jane@example.com", Provider: models.ProviderEmail})

			Convey("Then it is rejected as a duplicate", func() {
				So(errors.Is(err, ErrAlreadyExists), ShouldBeTrue)
			})
		})

		Convey("When looking the user up", func() {
			byID, err := s.GetUserByID(ctx, user.ID)
			So(err, ShouldBeNil)
			byEmail, err := s.GetUserByEmail(ctx, "jane@example.com")
			So(err, ShouldBeNil)

			Convey("Then both lookups return the same record", func() {
				So(byID.Email, ShouldEqual, "jane@example.com")
				So(byEmail.ID, ShouldEqual, user.ID)
				So(byID.Password, ShouldEqual, "hash")
			})
		})

		Convey("When looking up an unknown user", func() {
			_, err := s.GetUserByEmail(ctx, "nobody@example.com")
			_, gErr := s.GetUserByGoogleID(ctx, "")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(gErr, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When updating name and key", func() {
			updated, err := s.UpdateUser(ctx, user.ID, UserUpdate{Name: strPtr("Jane Smith"), EncryptedGeminiAPIKey: strPtr("iv:cipher")})

			Convey("Then only those fields change", func() {
				So(err, ShouldBeNil)
				So(updated.Name, ShouldEqual, "Jane Smith")
				So(updated.HasGeminiAPIKey, ShouldBeTrue)
				So(updated.Email, ShouldEqual, "jane@example.com")
				So(updated.Provider, ShouldEqual, models.ProviderEmail)
			})

			Convey("And clearing the key resets the derived flag", func() {
				cleared, err := s.UpdateUser(ctx, user.ID, UserUpdate{EncryptedGeminiAPIKey: strPtr("")})
				So(err, ShouldBeNil)
				So(cleared.HasGeminiAPIKey, ShouldBeFalse)
				So(cleared.Name, ShouldEqual, "Jane Smith")
			})
		})

		Convey("When linking a Google account", func() {
			_, err := s.UpdateUser(ctx, user.ID, UserUpdate{GoogleID: strPtr("g-123")})
			So(err, ShouldBeNil)

			found, err := s.GetUserByGoogleID(ctx, "g-123")

			Convey("Then the user is found by Google ID", func() {
				So(err, ShouldBeNil)
				So(found.ID, ShouldEqual, user.ID)
			})
		})

		Convey("When updating a missing user", func() {
			_, err := s.UpdateUser(ctx, "missing", UserUpdate{Name: strPtr("x")})

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestSQLiteResumes(t *testing.T) {
	Convey("Given two users with resumes", t, func() {
		s := openTestStore(t)
		ctx := context.Background()

		owner := &models.User{Name: "Owner", Email: "owner@example.com", Provider: models.ProviderEmail}
		other := &models.User{Name: "Other", Email: "other@example.com", Provider: models.ProviderEmail}
		So(s.CreateUser(ctx, owner), ShouldBeNil)
		So(s.CreateUser(ctx, other), ShouldBeNil)

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		older := &models.Resume{UserID: owner.ID, FileName: "old.pdf", FilePath: "resume-old.pdf", UploadedAt: base}
		newer := &models.Resume{
			UserID: owner.ID, FileName: "new.pdf", FilePath: "resume-new.pdf", UploadedAt: base.Add(time.Hour),
			ExtractedData: &models.ExtractedData{Name: "Owner", Skills: models.FlexibleStringSlice{"Go", "SQL"}, LocationCity: "Berlin"},
		}
		foreign := &models.Resume{UserID: other.ID, FileName: "x.txt", FilePath: "resume-x.txt", UploadedAt: base}
		So(s.CreateResume(ctx, older), ShouldBeNil)
		So(s.CreateResume(ctx, newer), ShouldBeNil)
		So(s.CreateResume(ctx, foreign), ShouldBeNil)

		Convey("Then listing returns the owner's resumes newest first", func() {
			list, err := s.ListResumes(ctx, owner.ID)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 2)
			So(list[0].ID, ShouldEqual, newer.ID)
			So(list[1].ID, ShouldEqual, older.ID)
		})

		Convey("Then the latest resume carries its extracted data", func() {
			latest, err := s.GetLatestResume(ctx, owner.ID)
			So(err, ShouldBeNil)
			So(latest.ID, ShouldEqual, newer.ID)
			So(latest.ExtractedData, ShouldNotBeNil)
			So([]string(latest.ExtractedData.Skills), ShouldResemble, []string{"Go", "SQL"})
			So(latest.ExtractedData.HasCity(), ShouldBeTrue)
			So(latest.UploadedAt.Equal(newer.UploadedAt), ShouldBeTrue)
		})

		Convey("Then another user's resume is not visible", func() {
			_, err := s.GetResume(ctx, owner.ID, foreign.ID)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(errors.Is(s.DeleteResume(ctx, owner.ID, foreign.ID), ErrNotFound), ShouldBeTrue)
		})

		Convey("When replacing extracted data", func() {
			data := &models.ExtractedData{Skills: models.FlexibleStringSlice{"Rust"}}
			So(s.UpdateResumeData(ctx, owner.ID, older.ID, data), ShouldBeNil)

			got, err := s.GetResume(ctx, owner.ID, older.ID)

			Convey("Then the new data is stored", func() {
				So(err, ShouldBeNil)
				So([]string(got.ExtractedData.Skills), ShouldResemble, []string{"Rust"})
			})
		})

		Convey("When deleting a resume", func() {
			So(s.DeleteResume(ctx, owner.ID, newer.ID), ShouldBeNil)

			Convey("Then it is gone and the previous one becomes latest", func() {
				_, err := s.GetResume(ctx, owner.ID, newer.ID)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)

				latest, err := s.GetLatestResume(ctx, owner.ID)
				So(err, ShouldBeNil)
				So(latest.ID, ShouldEqual, older.ID)
			})
		})

		Convey("Then every stored path is listed", func() {
			paths, err := s.ListResumePaths(ctx)
			So(err, ShouldBeNil)
			So(paths, ShouldHaveLength, 3)
			So(paths, ShouldContain, "resume-new.pdf")
		})

		Convey("Then a user without resumes has no latest resume", func() {
			third := &models.User{Name: "Third", Email: "third@example.com", Provider: models.ProviderGoogle}
			So(s.CreateUser(ctx, third), ShouldBeNil)
			_, err := s.GetLatestResume(ctx, third.ID)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})
}
