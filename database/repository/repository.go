package repository

import (
	bookingRepo "maidbook/database/repository/booking"
	catalogRepo "maidbook/database/repository/catalog"
	subscriptionRepo "maidbook/database/repository/subscription"
	userRepo "maidbook/database/repository/user"
)

// Re-export the CatalogRepository interface and constructor.
type CatalogRepository = catalogRepo.CatalogRepository

var NewMongoCatalogRepo = catalogRepo.NewMongoCatalogRepo

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

// Re-export the UserRepository interface and constructor.
type UserRepository = userRepo.UserRepository

var NewMongoUserRepo = userRepo.NewMongoUserRepo

// Re-export the SubscriptionRepository interface and constructor.
type SubscriptionRepository = subscriptionRepo.SubscriptionRepository

var NewMongoSubscriptionRepo = subscriptionRepo.NewMongoSubscriptionRepo
