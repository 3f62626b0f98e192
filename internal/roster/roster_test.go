package roster

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/pocket-points/internal/config"
	"github.com/sevigo/pocket-points/internal/core"
	"github.com/sevigo/pocket-points/internal/storage"
)

func newTestService(t *testing.T) (Service, *storage.MockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := storage.NewMockStore(ctrl)
	cfg := &config.Config{PhotoDir: "/srv/photos"}
	return New(cfg, store, slog.New(slog.DiscardHandler)), store
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name      string
		student   string
		image     string
		mockSetup func(store *storage.MockStore)
		wantImage string
		wantErr   error
	}{
		{
			name:    "stores trimmed fields",
			student: "  Ada ",
			image:   " ada.jpg ",
			mockSetup: func(store *storage.MockStore) {
				store.EXPECT().CreateStudent(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, s *core.Student) error {
						assert.Equal(t, "Ada", s.Name)
						s.ID = 7
						return nil
					},
				)
			},
			wantImage: "ada.jpg",
		},
		{
			name:      "empty name is rejected",
			student:   "   ",
			mockSetup: func(*storage.MockStore) {},
			wantErr:   ErrInvalidName,
		},
		{
			name:    "store failure is wrapped",
			student: "Grace",
			mockSetup: func(store *storage.MockStore) {
				store.EXPECT().CreateStudent(gomock.Any(), gomock.Any()).Return(errors.New("boom"))
			},
			wantErr: errors.New("boom"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService(t)
			tc.mockSetup(store)

			got, err := svc.Create(context.Background(), tc.student, tc.image)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), got.ID)
			assert.Equal(t, tc.wantImage, got.ImageName)
		})
	}
}

func TestStickers(t *testing.T) {
	t.Run("add increments", func(t *testing.T) {
		svc, store := newTestService(t)
		store.EXPECT().GetStudent(gomock.Any(), int64(1)).Return(&core.Student{ID: 1, Name: "Ada", NumStickers: 2}, nil)
		store.EXPECT().UpdateStudent(gomock.Any(), gomock.Any()).Return(nil)

		got, err := svc.AddSticker(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 3, got.NumStickers)
	})

	t.Run("remove decrements", func(t *testing.T) {
		svc, store := newTestService(t)
		store.EXPECT().GetStudent(gomock.Any(), int64(1)).Return(&core.Student{ID: 1, Name: "Ada", NumStickers: 1}, nil)
		store.EXPECT().UpdateStudent(gomock.Any(), gomock.Any()).Return(nil)

		got, err := svc.RemoveLastSticker(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 0, got.NumStickers)
	})

	t.Run("remove with none left fails without writing", func(t *testing.T) {
		svc, store := newTestService(t)
		store.EXPECT().GetStudent(gomock.Any(), int64(1)).Return(&core.Student{ID: 1, Name: "Ada"}, nil)

		_, err := svc.RemoveLastSticker(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNoStickers)
	})

	t.Run("clear resets to zero", func(t *testing.T) {
		svc, store := newTestService(t)
		store.EXPECT().GetStudent(gomock.Any(), int64(4)).Return(&core.Student{ID: 4, Name: "Lin", NumStickers: 9}, nil)
		store.EXPECT().UpdateStudent(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, s *core.Student) error {
				assert.Equal(t, 0, s.NumStickers)
				return nil
			},
		)

		_, err := svc.ClearStickers(context.Background(), 4)
		require.NoError(t, err)
	})

	t.Run("unknown student", func(t *testing.T) {
		svc, store := newTestService(t)
		store.EXPECT().GetStudent(gomock.Any(), int64(99)).Return(nil, storage.ErrNotFound)

		_, err := svc.AddSticker(context.Background(), 99)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestAddStickerConcurrent(t *testing.T) {
	svc, store := newTestService(t)

	var mu sync.Mutex
	count := 0
	store.EXPECT().GetStudent(gomock.Any(), int64(1)).DoAndReturn(
		func(context.Context, int64) (*core.Student, error) {
			mu.Lock()
			defer mu.Unlock()
			return &core.Student{ID: 1, Name: "Ada", NumStickers: count}, nil
		},
	).Times(20)
	store.EXPECT().UpdateStudent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s *core.Student) error {
			mu.Lock()
			defer mu.Unlock()
			count = s.NumStickers
			return nil
		},
	).Times(20)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddSticker(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}

func TestEdit(t *testing.T) {
	name := func(s string) *string { return &s }

	testCases := []struct {
		name      string
		id        int64
		changes   Changes
		mockSetup func(store *storage.MockStore)
		want      *core.Student
		wantErrIs error
	}{
		{
			name:    "rename keeps photo and stickers",
			id:      1,
			changes: Changes{Name: name("  Grace ")},
			mockSetup: func(store *storage.MockStore) {
				store.EXPECT().GetStudent(gomock.Any(), int64(1)).Return(&core.Student{ID: 1, Name: "Ada", ImageName: "ada.png", NumStickers: 3}, nil)
				store.EXPECT().UpdateStudent(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: &core.Student{ID: 1, Name: "Grace", ImageName: "ada.png", NumStickers: 3},
		},
		{
			name:    "empty image removes photo",
			id:      1,
			changes: Changes{ImageName: name("")},
			mockSetup: func(store *storage.MockStore) {
				store.EXPECT().GetStudent(gomock.Any(), int64(1)).Return(&core.Student{ID: 1, Name: "Ada", ImageName: "ada.png"}, nil)
				store.EXPECT().UpdateStudent(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: &core.Student{ID: 1, Name: "Ada"},
		},
		{
			name:    "blank name is rejected without writing",
			id:      1,
			changes: Changes{Name: name("   ")},
			mockSetup: func(store *storage.MockStore) {
				store.EXPECT().GetStudent(gomock.Any(), int64(1)).Return(&core.Student{ID: 1, Name: "Ada"}, nil)
			},
			wantErrIs: ErrInvalidName,
		},
		{
			name:    "unknown student",
			id:      9,
			changes: Changes{Name: name("Grace")},
			mockSetup: func(store *storage.MockStore) {
				store.EXPECT().GetStudent(gomock.Any(), int64(9)).Return(nil, storage.ErrNotFound)
			},
			wantErrIs: storage.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService(t)
			tc.mockSetup(store)

			got, err := svc.Edit(context.Background(), tc.id, tc.changes)
			if tc.wantErrIs != nil {
				assert.ErrorIs(t, err, tc.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUpdateValidates(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Update(context.Background(), &core.Student{ID: 1, Name: ""})
	assert.ErrorIs(t, err, ErrInvalidName)

	err = svc.Update(context.Background(), &core.Student{ID: 1, Name: "Ada", NumStickers: -1})
	assert.ErrorIs(t, err, ErrNegativeStickers)
}

func TestImport(t *testing.T) {
	t.Run("creates every student", func(t *testing.T) {
		svc, store := newTestService(t)
		var names []string
		store.EXPECT().CreateStudent(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, s *core.Student) error {
				names = append(names, s.Name)
				return nil
			},
		).Times(2)

		input := `
students:
  - name: Ada
    image: ada.png
    stickers: 3
  - name: Grace
`
		n, err := svc.Import(context.Background(), strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"Ada", "Grace"}, names)
	})

	t.Run("invalid entry writes nothing", func(t *testing.T) {
		svc, _ := newTestService(t)
		input := `
students:
  - name: Ada
  - name: ""
`
		_, err := svc.Import(context.Background(), strings.NewReader(input))
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("unknown field", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Import(context.Background(), strings.NewReader("students:\n  - nickname: Ada\n"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		svc, _ := newTestService(t)
		n, err := svc.Import(context.Background(), strings.NewReader(""))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestPhotoPath(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Equal(t, "/srv/photos/ada.jpg", svc.PhotoPath(&core.Student{ImageName: "ada.jpg"}))
	assert.Equal(t, "", svc.PhotoPath(&core.Student{}))
	assert.Equal(t, "", svc.PhotoPath(nil))
}
