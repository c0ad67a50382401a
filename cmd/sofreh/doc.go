// Command sofreh is the command-line client for the Sofreh restaurant
// platform.
//
// Install:
//
//	go install github.com/shashiranjanraj/sofreh/cmd/sofreh@latest
//
// Everyday use:
//
//	sofreh restaurants             # browse restaurants
//	sofreh foods                   # browse the menu
//	sofreh cart add 7 --qty 2      # works logged out too
//	sofreh login -u ali
//	sofreh cart merge              # carry the guest cart over
//	sofreh order place --address "..." --phone 09121234567 \
//	    --card 6037991234567890 --cvv2 123 --otp 123456
//	sofreh reserve --date 2026-09-14 --time 20:00 --guests 4 --name Ali --phone 09121234567
//
// Vendors:
//
//	sofreh settings --file settings.json
//	sofreh dashboard               # local dashboard on DASHBOARD_ADDR
//
// Configuration comes from .env / config/app.json next to the working
// directory; see the config package for the recognised keys.
package main
