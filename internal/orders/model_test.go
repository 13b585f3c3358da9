package orders

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderDecodesFrontEndDocument(t *testing.T) {
	raw := `{
		"transactionId": "TX-1",
		"fullName": "Nguyễn Văn A",
		"datetime": {"seconds": 1717200000, "nanoseconds": 0},
		"state": "DELIVERED",
		"totalPrice": "150000",
		"services": [
			{"title": "Phở bò", "quantity": "2", "options": {"name": "Tái", "quantity": 1}},
			{"title": "Trà đá", "options": [{"name": "Ít đá"}, "garbage", {"OptionName": "Lớn", "Price": "5000"}]},
			"not an item",
			{"title": 42},
			{"name": "Bánh mì"}
		]
	}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))

	assert.Equal(t, StatusDelivered, o.State)
	assert.True(t, o.Datetime.Valid)
	assert.True(t, o.TotalPrice.Valid)
	assert.Equal(t, "150000", o.TotalPrice.Value.String())

	require.Len(t, o.Services, 3)
	assert.Equal(t, "Phở bò", o.Services[0].Title)
	assert.Equal(t, 2, o.Services[0].Quantity.Int())
	assert.Equal(t, SingleOptionKind, o.Services[0].Options.Kind())
	assert.Equal(t, "Tái", o.Services[0].Options.All()[0].Name)

	assert.Equal(t, 1, o.Services[1].Quantity.Int())
	assert.Equal(t, OptionListKind, o.Services[1].Options.Kind())
	opts := o.Services[1].Options.All()
	require.Len(t, opts, 2)
	assert.Equal(t, "Lớn", opts[1].Name)
	assert.Equal(t, "5000", opts[1].Price.String())

	assert.Equal(t, "Bánh mì", o.Services[2].Title)
	assert.Equal(t, NoOptions, o.Services[2].Options.Kind())
	assert.Equal(t, 4, o.ItemCount())
}

func TestOrderToleratesMalformedFields(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"state": 5, "totalPrice": "abc", "services": "oops"}`), &o))
	assert.Equal(t, Status(""), o.State)
	assert.Equal(t, StatusNew, o.DisplayState())
	assert.False(t, o.TotalPrice.Valid)
	assert.False(t, o.Datetime.Valid)
	assert.Empty(t, o.Services)
}

func TestOrderCustomerFieldsOfWrongType(t *testing.T) {
	raw := `{
		"transactionId": 1717200000,
		"fullName": ["broken"],
		"email": {"x": 1},
		"phone": 912345678,
		"address": true,
		"datetime": "2024-06-03T08:00:00Z",
		"state": "delivered",
		"totalPrice": 100000
	}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	assert.Equal(t, "1717200000", o.TransactionID)
	assert.Equal(t, "912345678", o.Phone)
	assert.Empty(t, o.FullName)
	assert.Empty(t, o.Email)
	assert.Empty(t, o.Address)
	assert.Equal(t, StatusDelivered, o.State)
	assert.True(t, o.Datetime.Valid)
	assert.Equal(t, "100000", o.TotalPrice.Value.String())
}

func TestOptionsRoundTripKeepsShape(t *testing.T) {
	single, err := json.Marshal(Single(Option{Name: "Tái"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Tái","quantity":1,"price":null}`, string(single))

	list, err := json.Marshal(List())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(list))

	none, err := json.Marshal(Options{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(none))
}

func TestSubtotal(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"services":[{"title":"A","price":"10000","quantity":3},{"title":"B"}]}`), &o))
	sum, priced := o.Subtotal()
	assert.True(t, priced)
	assert.Equal(t, "30000", sum.String())

	var bare Order
	_, priced = bare.Subtotal()
	assert.False(t, priced)
}
