package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type listingFixture struct {
	svc       ListingService
	db        *gorm.DB
	images    *fakeImageStore
	index     *fakeIndex
	publisher *recordingPublisher
	favorites FavoriteService
}

func setupListingServiceTest(t *testing.T) *listingFixture {
	testDB := setupTestDB(t)
	return newListingFixture(testDB, repository.NewListingRepository(testDB))
}

func newListingFixture(testDB *gorm.DB, listingRepo repository.ListingRepository) *listingFixture {
	f := &listingFixture{
		db:        testDB,
		images:    newFakeImageStore(),
		index:     newFakeIndex(),
		publisher: &recordingPublisher{},
	}
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	profiles := NewProfileService(repository.NewProfileRepository(testDB), repository.NewUserRepository(testDB))
	f.svc = NewListingService(listingRepo, favoriteRepo, profiles, f.images, f.index, f.publisher)
	f.favorites = NewFavoriteService(favoriteRepo, listingRepo, nil)
	return f
}

// failingListingRepo rejects inserts and updates.
type failingListingRepo struct {
	repository.ListingRepository
}

func (failingListingRepo) Create(context.Context, *model.VehicleListing) error {
	return errors.New("insert failed")
}

func (failingListingRepo) Update(context.Context, *model.VehicleListing) error {
	return errors.New("update failed")
}

func validListingInput() ListingInput {
	return ListingInput{
		Brand: "Toyota", Model: "Corolla", Year: intp(2020), Price: intp(12_500_000),
		Mileage: intp(35_000), Transmission: "Automática", FuelType: "Bencina", Color: "Blanco",
		EngineSize: intp(1800), Condition: "used", VehicleType: "Sedán", Description: "Único dueño",
	}
}

func jpegs(n int) []ImageUpload {
	out := make([]ImageUpload, n)
	for i := range out {
		out[i] = ImageUpload{Filename: "photo.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}
	}
	return out
}

func TestListingService_Create(t *testing.T) {
	f := setupListingServiceTest(t)
	user := createUser(t, f.db, "seller@example.com", model.AccountPersonal)

	listing, err := f.svc.Create(context.Background(), user.ID, validListingInput(), jpegs(2))
	require.NoError(t, err)

	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, model.ListingActive, listing.Status)
	assert.Equal(t, user.ID, listing.UserID)
	require.Len(t, listing.Images, 2)
	for _, url := range listing.Images {
		assert.True(t, strings.HasPrefix(url, fakeBaseURL+"vehicles/"), url)
		assert.True(t, strings.HasSuffix(url, ".jpg"), url)
	}
	assert.NotEqual(t, listing.Images[0], listing.Images[1])
	assert.Equal(t, 2, f.images.count())
	assert.Contains(t, f.index.indexed, listing.ID)
	assert.Equal(t, []events.Type{events.ListingCreated}, f.publisher.types())
}

func TestListingService_CreateValidation(t *testing.T) {
	f := setupListingServiceTest(t)
	user := createUser(t, f.db, "seller@example.com", model.AccountPersonal)
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(*ListingInput)
		images []ImageUpload
		field  string
	}{
		{"missing brand", func(in *ListingInput) { in.Brand = "  " }, jpegs(1), "brand"},
		{"missing year", func(in *ListingInput) { in.Year = nil }, jpegs(1), "year"},
		{"year too old", func(in *ListingInput) { in.Year = intp(1899) }, jpegs(1), "year"},
		{"year in the future", func(in *ListingInput) { in.Year = intp(3000) }, jpegs(1), "year"},
		{"negative price", func(in *ListingInput) { in.Price = intp(-1) }, jpegs(1), "price"},
		{"negative mileage", func(in *ListingInput) { in.Mileage = intp(-5) }, jpegs(1), "mileage"},
		{"unknown condition", func(in *ListingInput) { in.Condition = "Usado" }, jpegs(1), "condition"},
		{"unknown vehicle type", func(in *ListingInput) { in.VehicleType = "Tank" }, jpegs(1), "vehicle_type"},
		{"no images", func(*ListingInput) {}, nil, "images"},
		{"too many images", func(*ListingInput) {}, jpegs(7), "images"},
		{"bad content type", func(*ListingInput) {}, []ImageUpload{{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("x")}}, "images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validListingInput()
			tt.modify(&in)

			_, err := f.svc.Create(ctx, user.ID, in, tt.images)
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	assert.Zero(t, f.images.count(), "rejected input never reaches storage")
}

func TestListingService_CreateWithoutVehicleType(t *testing.T) {
	f := setupListingServiceTest(t)
	user := createUser(t, f.db, "seller@example.com", model.AccountPersonal)

	in := validListingInput()
	in.VehicleType = ""
	_, err := f.svc.Create(context.Background(), user.ID, in, jpegs(1))
	assert.NoError(t, err)
}

func TestListingService_CreateRequiresAuth(t *testing.T) {
	f := setupListingServiceTest(t)
	_, err := f.svc.Create(context.Background(), 0, validListingInput(), jpegs(1))
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestListingService_CreateUploadFailureRemovesUploaded(t *testing.T) {
	f := setupListingServiceTest(t)
	user := createUser(t, f.db, "seller@example.com", model.AccountPersonal)
	f.images.failAfter = 2

	_, err := f.svc.Create(context.Background(), user.ID, validListingInput(), jpegs(3))
	require.ErrorIs(t, err, ErrUploadFailed)

	assert.Zero(t, f.images.count())
	assert.Len(t, f.images.deleted, 2)

	var n int64
	f.db.Model(&model.VehicleListing{}).Count(&n)
	assert.Zero(t, n)
}

func TestListingService_CreateInsertFailureRemovesUploaded(t *testing.T) {
	testDB := setupTestDB(t)
	f := newListingFixture(testDB, failingListingRepo{repository.NewListingRepository(testDB)})
	user := createUser(t, testDB, "seller@example.com", model.AccountPersonal)

	_, err := f.svc.Create(context.Background(), user.ID, validListingInput(), jpegs(2))
	require.Error(t, err)

	assert.Zero(t, f.images.count())
	assert.Empty(t, f.publisher.types())
}

func hostedURL(userID uint, name string) string {
	return fmt.Sprintf("%svehicles/%d/%s", fakeBaseURL, userID, name)
}

func TestListingService_CreateWithHostedImages(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	user := createUser(t, f.db, "seller@example.com", model.AccountPersonal)

	in := validListingInput()
	in.HostedImages = []string{hostedURL(user.ID, "a.jpg"), hostedURL(user.ID, "a.jpg"), " "}
	listing, err := f.svc.Create(ctx, user.ID, in, jpegs(1))
	require.NoError(t, err)
	require.Len(t, listing.Images, 2, "duplicates and blanks are dropped")
	assert.Equal(t, hostedURL(user.ID, "a.jpg"), listing.Images[0])
	assert.Equal(t, 1, f.images.count())

	in.HostedImages = []string{hostedURL(user.ID, "b.jpg")}
	listing, err = f.svc.Create(ctx, user.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{hostedURL(user.ID, "b.jpg")}, []string(listing.Images))
}

func TestListingService_CreateRejectsForeignHostedImages(t *testing.T) {
	f := setupListingServiceTest(t)
	user := createUser(t, f.db, "seller@example.com", model.AccountPersonal)

	for _, u := range []string{
		hostedURL(user.ID+1, "a.jpg"),
		fmt.Sprintf("%svehicles/%d/../%d/a.jpg", fakeBaseURL, user.ID, user.ID+1),
		fmt.Sprintf("%svehicles/%d0/a.jpg", fakeBaseURL, user.ID),
		"https://elsewhere.test/vehicles/1/a.jpg",
		fakeBaseURL + "avatars/a.jpg",
	} {
		in := validListingInput()
		in.HostedImages = []string{u}
		_, err := f.svc.Create(context.Background(), user.ID, in, jpegs(1))
		require.ErrorIs(t, err, ErrValidation, u)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "image_urls", u)
	}

	in := validListingInput()
	for i := 0; i < model.MaxListingImages; i++ {
		in.HostedImages = append(in.HostedImages, hostedURL(user.ID, fmt.Sprintf("%d.jpg", i)))
	}
	_, err := f.svc.Create(context.Background(), user.ID, in, jpegs(1))
	require.ErrorIs(t, err, ErrValidation, "hosted and uploaded images share the limit")

	assert.Zero(t, f.images.count())
}

func TestListingService_CreateInsertFailureKeepsHostedImages(t *testing.T) {
	testDB := setupTestDB(t)
	f := newListingFixture(testDB, failingListingRepo{repository.NewListingRepository(testDB)})
	user := createUser(t, testDB, "seller@example.com", model.AccountPersonal)

	in := validListingInput()
	in.HostedImages = []string{hostedURL(user.ID, "a.jpg")}
	_, err := f.svc.Create(context.Background(), user.ID, in, jpegs(1))
	require.Error(t, err)

	assert.Len(t, f.images.deleted, 1)
	assert.NotContains(t, f.images.deleted, fmt.Sprintf("vehicles/%d/a.jpg", user.ID))
}

func TestListingService_OwnerOnly(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	owner := createUser(t, f.db, "owner@example.com", model.AccountPersonal)
	other := createUser(t, f.db, "other@example.com", model.AccountPersonal)
	listing, err := f.svc.Create(ctx, owner.ID, validListingInput(), jpegs(1))
	require.NoError(t, err)

	_, err = f.svc.ToggleStatus(ctx, other.ID, listing.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = f.svc.Update(ctx, other.ID, listing.ID, validListingInput(), nil, nil)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, f.svc.Delete(ctx, other.ID, listing.ID), ErrNotOwner)

	assert.ErrorIs(t, f.svc.Delete(ctx, owner.ID, "missing"), ErrListingNotFound)
	_, err = f.svc.ToggleStatus(ctx, 0, listing.ID)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestListingService_ToggleStatus(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	owner := createUser(t, f.db, "owner@example.com", model.AccountPersonal)
	listing, err := f.svc.Create(ctx, owner.ID, validListingInput(), jpegs(1))
	require.NoError(t, err)

	toggled, err := f.svc.ToggleStatus(ctx, owner.ID, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingInactive, toggled.Status)
	assert.Equal(t, model.ListingInactive, f.index.indexed[listing.ID])

	toggled, err = f.svc.ToggleStatus(ctx, owner.ID, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingActive, toggled.Status)

	assert.Equal(t, []events.Type{
		events.ListingCreated, events.ListingStatusChanged, events.ListingStatusChanged,
	}, f.publisher.types())
}

func TestListingService_Update(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	owner := createUser(t, f.db, "owner@example.com", model.AccountPersonal)
	listing, err := f.svc.Create(ctx, owner.ID, validListingInput(), jpegs(2))
	require.NoError(t, err)
	removed := listing.Images[0]

	in := validListingInput()
	in.Price = intp(11_000_000)
	updated, err := f.svc.Update(ctx, owner.ID, listing.ID, in, []string{removed}, jpegs(1))
	require.NoError(t, err)

	assert.Equal(t, 11_000_000, updated.Price)
	require.Len(t, updated.Images, 2)
	assert.Equal(t, listing.Images[1], updated.Images[0], "kept images stay first")
	assert.NotContains(t, updated.Images, removed)
	assert.Equal(t, 2, f.images.count())

	key, _ := f.images.KeyFromURL(removed)
	assert.Contains(t, f.images.deleted, key)
}

func TestListingService_UpdateAttachesHostedImages(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	owner := createUser(t, f.db, "owner@example.com", model.AccountPersonal)
	listing, err := f.svc.Create(ctx, owner.ID, validListingInput(), jpegs(1))
	require.NoError(t, err)
	original := listing.Images[0]

	in := validListingInput()
	in.HostedImages = []string{hostedURL(owner.ID, "new.jpg"), original}
	updated, err := f.svc.Update(ctx, owner.ID, listing.ID, in, []string{original}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{hostedURL(owner.ID, "new.jpg"), original}, []string(updated.Images))
	assert.Empty(t, f.images.deleted, "an image removed and attached again is kept")

	in.HostedImages = []string{hostedURL(owner.ID+1, "x.jpg")}
	_, err = f.svc.Update(ctx, owner.ID, listing.ID, in, nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListingService_UpdateImageLimits(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	owner := createUser(t, f.db, "owner@example.com", model.AccountPersonal)
	listing, err := f.svc.Create(ctx, owner.ID, validListingInput(), jpegs(5))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, owner.ID, listing.ID, validListingInput(), nil, jpegs(2))
	assert.ErrorIs(t, err, ErrValidation, "5 kept + 2 new exceeds the limit")

	_, err = f.svc.Update(ctx, owner.ID, listing.ID, validListingInput(), listing.Images, nil)
	assert.ErrorIs(t, err, ErrValidation, "removing every image leaves none")

	assert.Equal(t, 5, f.images.count())
}

func TestListingService_UpdateFailureRemovesNewImages(t *testing.T) {
	testDB := setupTestDB(t)
	ok := newListingFixture(testDB, repository.NewListingRepository(testDB))
	owner := createUser(t, testDB, "owner@example.com", model.AccountPersonal)
	listing, err := ok.svc.Create(context.Background(), owner.ID, validListingInput(), jpegs(1))
	require.NoError(t, err)

	f := newListingFixture(testDB, failingListingRepo{repository.NewListingRepository(testDB)})
	_, err = f.svc.Update(context.Background(), owner.ID, listing.ID, validListingInput(), nil, jpegs(2))
	require.Error(t, err)
	assert.Zero(t, f.images.count())
	assert.Len(t, f.images.deleted, 2)
}

func TestListingService_Delete(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	owner := createUser(t, f.db, "owner@example.com", model.AccountPersonal)
	fan := createUser(t, f.db, "fan@example.com", model.AccountPersonal)
	listing, err := f.svc.Create(ctx, owner.ID, validListingInput(), jpegs(3))
	require.NoError(t, err)
	require.NoError(t, f.favorites.AddFavorite(ctx, fan.ID, listing.ID))

	require.NoError(t, f.svc.Delete(ctx, owner.ID, listing.ID))

	assert.Zero(t, f.images.count())
	assert.NotContains(t, f.index.indexed, listing.ID)
	_, err = f.svc.GetDetail(ctx, listing.ID, owner.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)

	favs, err := f.favorites.ListFavorites(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestListingService_ListMine(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	owner := createUser(t, f.db, "owner@example.com", model.AccountPersonal)
	other := createUser(t, f.db, "other@example.com", model.AccountPersonal)

	mine, err := f.svc.ListMine(ctx, owner.ID)
	require.NoError(t, err)
	assert.NotNil(t, mine)

	a, err := f.svc.Create(ctx, owner.ID, validListingInput(), jpegs(1))
	require.NoError(t, err)
	_, err = f.svc.ToggleStatus(ctx, owner.ID, a.ID)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, other.ID, validListingInput(), jpegs(1))
	require.NoError(t, err)

	mine, err = f.svc.ListMine(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1, "inactive listings are still the owner's")
	assert.Equal(t, a.ID, mine[0].ID)
}

func TestListingService_GetDetail(t *testing.T) {
	f := setupListingServiceTest(t)
	ctx := context.Background()
	owner := createUser(t, f.db, "owner@example.com", model.AccountPersonal)
	viewer := createUser(t, f.db, "viewer@example.com", model.AccountPersonal)
	_, err := NewProfileService(repository.NewProfileRepository(f.db), repository.NewUserRepository(f.db)).
		UpdateProfile(ctx, owner.ID, ProfileInput{FullName: "Ana", Username: "ana", Phone: "+56922223333", Region: "RM", City: "Santiago"})
	require.NoError(t, err)

	listing, err := f.svc.Create(ctx, owner.ID, validListingInput(), jpegs(1))
	require.NoError(t, err)
	require.NoError(t, f.favorites.AddFavorite(ctx, viewer.ID, listing.ID))

	detail, err := f.svc.GetDetail(ctx, listing.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsFavorite)
	require.NotNil(t, detail.Seller)
	assert.Equal(t, "Ana", detail.Seller.FullName)

	anon, err := f.svc.GetDetail(ctx, listing.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorite)

	_, err = f.svc.ToggleStatus(ctx, owner.ID, listing.ID)
	require.NoError(t, err)

	_, err = f.svc.GetDetail(ctx, listing.ID, viewer.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
	own, err := f.svc.GetDetail(ctx, listing.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingInactive, own.Vehicle.Status)
}

func TestListingService_Import(t *testing.T) {
	f := setupListingServiceTest(t)
	user := createUser(t, f.db, "dealer@example.com", model.AccountBusiness)
	ctx := context.Background()
	urls := []string{"https://cdn.example.com/stock/corolla-1.jpg"}

	listing, err := f.svc.Import(ctx, user.ID, validListingInput(), urls)
	require.NoError(t, err)
	assert.Equal(t, urls, listing.Images)
	assert.Zero(t, f.images.count())
	assert.Contains(t, f.index.indexed, listing.ID)
	assert.Equal(t, []events.Type{events.ListingCreated}, f.publisher.types())

	_, err = f.svc.Import(ctx, user.ID, validListingInput(), nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Import(ctx, 0, validListingInput(), urls)
	assert.ErrorIs(t, err, ErrAuthRequired)
}
