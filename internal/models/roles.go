package models

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)
