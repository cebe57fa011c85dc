package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Pet{},
		&OwnedPet{},
		&AdoptionRequest{},
		&ServiceCategory{},
		&Service{},
		&ServiceAppointment{},
		&ProductCategory{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&GatewayCallback{},
		&ChatRoom{},
		&ChatMessage{},
		&Notification{},
		&PayeeBalance{},
		&News{},
	}
}
