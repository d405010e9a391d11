package payment

import "encoding/json"

// Customer is the purchaser attached to an order.
type Customer struct {
	First   string `json:"first"`
	Last    string `json:"last"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// Order is the subset of a FastSpring order the bridge reads. Raw keeps the
// order exactly as the processor returned it.
type Order struct {
	ID        string          `json:"id"`
	Reference string          `json:"reference"`
	Customer  Customer        `json:"customer"`
	Raw       json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the original bytes.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Order(p)
	o.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the order unmodified when it came from the processor.
func (o Order) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	type plain Order
	return json.Marshal(plain(o))
}

// orderListResponse is the body of GET /orders/{id}.
type orderListResponse struct {
	Orders []Order `json:"orders"`
}
