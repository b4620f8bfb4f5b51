package notify

import (
	"fmt"
	"time"
)

func AddedToCart(productName string) Notification {
	return Notification{
		Type:     TypeSuccess,
		Title:    "Added to cart!",
		Message:  fmt.Sprintf("%s has been added to your cart", productName),
		Duration: 3 * time.Second,
	}
}

func RemovedFromCart(productName string) Notification {
	return Notification{
		Type:     TypeInfo,
		Title:    "Removed from cart",
		Message:  fmt.Sprintf("%s has been removed from your cart", productName),
		Duration: 3 * time.Second,
	}
}

func AddedToWishlist(productName string) Notification {
	return Notification{
		Type:     TypeSuccess,
		Title:    "Added to wishlist!",
		Message:  fmt.Sprintf("%s has been saved to your wishlist", productName),
		Duration: 3 * time.Second,
	}
}

func OrderPlaced(orderNumber string) Notification {
	return Notification{
		Type:     TypeSuccess,
		Title:    "Order placed successfully!",
		Message:  fmt.Sprintf("Your order #%s has been confirmed", orderNumber),
		Duration: 5 * time.Second,
	}
}

func NetworkError() Notification {
	return Notification{
		Type:       TypeError,
		Title:      "Network Error",
		Message:    "Please check your internet connection and try again",
		Persistent: true,
	}
}

func LoginSuccess(userName string) Notification {
	return Notification{
		Type:     TypeSuccess,
		Title:    "Welcome back!",
		Message:  fmt.Sprintf("Hi %s, you're now signed in", userName),
		Duration: 3 * time.Second,
	}
}

func LogoutSuccess() Notification {
	return Notification{
		Type:     TypeInfo,
		Title:    "Signed out",
		Message:  "You have been successfully signed out",
		Duration: 3 * time.Second,
	}
}

func PriceAlert(productName, newPrice string) Notification {
	return Notification{
		Type:     TypeInfo,
		Title:    "Price Alert!",
		Message:  fmt.Sprintf("%s is now available for %s", productName, newPrice),
		Duration: 8 * time.Second,
	}
}

func StockAlert(productName string) Notification {
	return Notification{
		Type:     TypeWarning,
		Title:    "Low Stock Alert",
		Message:  fmt.Sprintf("Only a few %s left in stock!", productName),
		Duration: 6 * time.Second,
	}
}

func PaymentSuccess() Notification {
	return Notification{
		Type:     TypeSuccess,
		Title:    "Payment Successful!",
		Message:  "Your payment has been processed successfully",
		Duration: 4 * time.Second,
	}
}

func PaymentFailed() Notification {
	return Notification{
		Type:       TypeError,
		Title:      "Payment Failed",
		Message:    "There was an issue processing your payment. Please try again.",
		Persistent: true,
	}
}
