package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitalfeed/vitalfeed-backend/internal/models"
)

func TestStorage_CartLifecycle(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "vet@clinique.tn")

	_, err := storage.GetCartByUser(ctx, userID)
	require.ErrorIs(t, err, models.ErrCartNotFound)

	created, err := storage.CreateCart(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, userID, created.UserID)
	require.Equal(t, models.OrderStatusCart, created.Status)
	require.Zero(t, created.TotalAmount)
	require.Nil(t, created.OrderNumber)
	require.Nil(t, created.ConfirmedAt)

	got, err := storage.GetCartByUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	// Частичный уникальный индекс не пускает вторую активную корзину.
	_, err = storage.CreateCart(ctx, userID)
	require.Error(t, err)
}

func TestStorage_AddItem(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verify := NewTestVerification(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "vet@clinique.tn")
	croquettes := factory.CreateProduct(t, "Croquettes chiot 10kg", 32.5)
	vitamines := factory.CreateProduct(t, "Vitamines chat", 12.0)

	cart, err := storage.CreateCart(ctx, userID)
	require.NoError(t, err)

	err = storage.AddItem(ctx, cart.ID, croquettes, 2)
	require.NoError(t, err)
	err = storage.AddItem(ctx, cart.ID, vitamines, 1)
	require.NoError(t, err)

	// Повторное добавление того же товара сливается в одну позицию.
	err = storage.AddItem(ctx, cart.ID, croquettes, 3)
	require.NoError(t, err)

	verify.VerifyItemCount(t, cart.ID, 2)
	verify.VerifyCartTotal(t, cart.ID, 32.5*5+12.0)

	items, err := storage.ListCartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Croquettes chiot 10kg", items[0].ProductName)
	require.Equal(t, 5, items[0].Item.Quantity)
	require.Equal(t, 1, items[1].Item.Quantity)
}

func TestStorage_UpdateItemQuantity(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verify := NewTestVerification(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "vet@clinique.tn")
	otherID := factory.CreateUser(t, "autre@clinique.tn")
	product := factory.CreateProduct(t, "Antiparasitaire", 18.0)

	cart, err := storage.CreateCart(ctx, userID)
	require.NoError(t, err)
	otherCart, err := storage.CreateCart(ctx, otherID)
	require.NoError(t, err)

	require.NoError(t, storage.AddItem(ctx, cart.ID, product, 1))
	items, err := storage.ListCartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	itemID := items[0].Item.ID

	err = storage.UpdateItemQuantity(ctx, cart.ID, itemID, 4)
	require.NoError(t, err)
	verify.VerifyCartTotal(t, cart.ID, 18.0*4)

	// Позиция чужого заказа недоступна.
	err = storage.UpdateItemQuantity(ctx, otherCart.ID, itemID, 2)
	require.ErrorIs(t, err, models.ErrItemNotOwned)
	verify.VerifyCartTotal(t, cart.ID, 18.0*4)

	err = storage.UpdateItemQuantity(ctx, cart.ID, itemID+100, 2)
	require.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestStorage_RemoveAndClear(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verify := NewTestVerification(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "vet@clinique.tn")
	croquettes := factory.CreateProduct(t, "Croquettes chiot 10kg", 32.5)
	vitamines := factory.CreateProduct(t, "Vitamines chat", 12.0)

	cart, err := storage.CreateCart(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, storage.AddItem(ctx, cart.ID, croquettes, 2))
	require.NoError(t, storage.AddItem(ctx, cart.ID, vitamines, 1))

	items, err := storage.ListCartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	err = storage.RemoveItem(ctx, cart.ID, items[0].Item.ID)
	require.NoError(t, err)
	verify.VerifyItemCount(t, cart.ID, 1)
	verify.VerifyCartTotal(t, cart.ID, 12.0)

	err = storage.ClearCart(ctx, cart.ID)
	require.NoError(t, err)
	verify.VerifyItemCount(t, cart.ID, 0)
	verify.VerifyCartTotal(t, cart.ID, 0)
}

func TestStorage_ConfirmCart(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "vet@clinique.tn")
	product := factory.CreateProduct(t, "Croquettes chiot 10kg", 32.5)

	cart, err := storage.CreateCart(ctx, userID)
	require.NoError(t, err)

	confirmedAt := time.Now().UTC().Truncate(time.Second)

	// Пустую корзину оформить нельзя.
	_, err = storage.ConfirmCart(ctx, userID, "ORD-EMPTY001", confirmedAt)
	require.ErrorIs(t, err, models.ErrEmptyCart)

	// Корзина из одних бесплатных позиций тоже не оформляется.
	echantillon := factory.CreateProduct(t, "Échantillon gratuit", 0)
	require.NoError(t, storage.AddItem(ctx, cart.ID, echantillon, 1))
	_, err = storage.ConfirmCart(ctx, userID, "ORD-ZERO0001", confirmedAt)
	require.ErrorIs(t, err, models.ErrEmptyCart)

	items, err := storage.ListCartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.NoError(t, storage.RemoveItem(ctx, cart.ID, items[0].Item.ID))

	require.NoError(t, storage.AddItem(ctx, cart.ID, product, 3))

	confirmed, err := storage.ConfirmCart(ctx, userID, "ORD-AB12CD34", confirmedAt)
	require.NoError(t, err)
	require.Equal(t, cart.ID, confirmed.ID)
	require.Equal(t, models.OrderStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.OrderNumber)
	require.Equal(t, "ORD-AB12CD34", *confirmed.OrderNumber)
	require.NotNil(t, confirmed.ConfirmedAt)
	require.InDelta(t, 32.5*3, confirmed.TotalAmount, 0.001)

	// Повторное оформление не находит активной корзины.
	_, err = storage.ConfirmCart(ctx, userID, "ORD-SECOND01", confirmedAt)
	require.ErrorIs(t, err, models.ErrCartNotFound)

	// После оформления пользователь может завести новую корзину.
	fresh, err := storage.CreateCart(ctx, userID)
	require.NoError(t, err)
	require.NotEqual(t, cart.ID, fresh.ID)
	require.Zero(t, fresh.TotalAmount)
}
